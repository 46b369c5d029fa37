package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"lookbook/internal/domain"
)

const defaultGeminiTextModel = "gemini-2.5-flash"

type textGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Copywriter
	OnFallback func(reason string, err error)
}

// GeminiCopywriter asks the Gemini API directly, requesting a JSON response.
type GeminiCopywriter struct {
	models textGenerator
	model  string
	chain  fallbackChain
}

func NewGeminiCopywriter(ctx context.Context, opts GeminiOptions) (*GeminiCopywriter, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(opts.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCopywriter{
		models: client.Models,
		model:  coalesce(opts.Model, defaultGeminiTextModel),
		chain:  fallbackChain{fallback: opts.Fallback, onFallback: opts.OnFallback},
	}, nil
}

func (g *GeminiCopywriter) Write(ctx context.Context, req ListingRequest) (*Listing, error) {
	contents := []*genai.Content{genai.NewContentFromText(buildListingPrompt(req), genai.RoleUser)}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.5),
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if perr := geminiProviderError(err); perr != nil {
			if perr.RateLimited() || perr.PaymentRequired() {
				return nil, perr
			}
			return g.chain.use(ctx, req, fmt.Sprintf("http_%d", perr.Status), perr)
		}
		return g.chain.use(ctx, req, "generate_content", err)
	}
	if resp == nil {
		return g.chain.use(ctx, req, "empty_response", errors.New("nil response"))
	}
	listing, err := listingFromPayload(resp.Text(), req, geminiProviderName)
	if err != nil {
		return g.chain.use(ctx, req, "parse_payload", err)
	}
	return listing, nil
}

func geminiProviderError(err error) *domain.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Provider: geminiProviderName, Status: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.ProviderError{Provider: geminiProviderName, Status: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return nil
}

var _ Copywriter = (*GeminiCopywriter)(nil)
