package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lookbook/internal/domain"
)

const (
	defaultGatewayBaseURL = "https://ai.gateway.lovable.dev/v1"
	defaultGatewayModel   = "google/gemini-2.5-flash"
)

type GatewayOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Copywriter
	OnFallback func(reason string, err error)
}

// GatewayCopywriter asks a chat-completions text model for the listing.
type GatewayCopywriter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	chain   fallbackChain
}

type gatewayChatRequest struct {
	Model    string           `json:"model"`
	Messages []gatewayMessage `json:"messages"`
}

type gatewayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gatewayChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewGatewayCopywriter accepts an empty key; every call then goes straight
// to the fallback.
func NewGatewayCopywriter(opts GatewayOptions) *GatewayCopywriter {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGatewayBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayCopywriter{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   coalesce(opts.Model, defaultGatewayModel),
		baseURL: baseURL,
		client:  client,
		chain:   fallbackChain{fallback: opts.Fallback, onFallback: opts.OnFallback},
	}
}

func (g *GatewayCopywriter) Write(ctx context.Context, req ListingRequest) (*Listing, error) {
	if g.apiKey == "" {
		return g.chain.use(ctx, req, "missing_api_key", nil)
	}
	payload := gatewayChatRequest{
		Model:    g.model,
		Messages: []gatewayMessage{{Role: "user", Content: buildListingPrompt(req)}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return g.chain.use(ctx, req, "encode_request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", &buf)
	if err != nil {
		return g.chain.use(ctx, req, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return g.chain.use(ctx, req, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		perr := &domain.ProviderError{Provider: gatewayProviderName, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if perr.RateLimited() || perr.PaymentRequired() {
			return nil, perr
		}
		return g.chain.use(ctx, req, fmt.Sprintf("http_%d", resp.StatusCode), perr)
	}
	var out gatewayChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return g.chain.use(ctx, req, "decode_response", err)
	}
	if len(out.Choices) == 0 {
		return g.chain.use(ctx, req, "empty_choices", errors.New("no choices"))
	}
	listing, err := listingFromPayload(out.Choices[0].Message.Content, req, gatewayProviderName)
	if err != nil {
		return g.chain.use(ctx, req, "parse_payload", err)
	}
	return listing, nil
}

// fallbackChain hands a request to the next copywriter, ending at the static
// template.
type fallbackChain struct {
	fallback   Copywriter
	onFallback func(reason string, err error)
}

func (f fallbackChain) use(ctx context.Context, req ListingRequest, reason string, cause error) (*Listing, error) {
	if f.onFallback != nil {
		f.onFallback(reason, cause)
	}
	next := f.fallback
	if next == nil {
		next = NewStaticCopywriter()
	}
	return next.Write(ctx, req)
}

var _ Copywriter = (*GatewayCopywriter)(nil)
