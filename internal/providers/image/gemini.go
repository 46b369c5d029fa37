package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"lookbook/internal/domain"
	"lookbook/internal/imageref"
)

const defaultGeminiModel = "gemini-2.5-flash-image"

// contentGenerator is the slice of *genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions configures the direct Gemini integration.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// GeminiGenerator calls generateContent on the Gemini API and reads the image
// from the inline data of the first candidate that carries one.
type GeminiGenerator struct {
	models contentGenerator
	model  string
	logger zerolog.Logger
}

// NewGeminiGenerator builds the SDK client. It does no network I/O.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
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
	return newGeminiGenerator(client.Models, opts.Model, opts.Logger), nil
}

func newGeminiGenerator(models contentGenerator, model string, logger zerolog.Logger) *GeminiGenerator {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGenerator{models: models, model: model, logger: logger}
}

func (g *GeminiGenerator) Name() string { return ProviderGemini }

// Form is inline: the Gemini API only accepts embedded image bytes.
func (g *GeminiGenerator) Form() imageref.Form { return imageref.FormInline }

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (imageref.Reference, error) {
	if err := validate(req); err != nil {
		return imageref.Reference{}, err
	}
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for i, img := range req.Images {
		if !img.IsInline() {
			return imageref.Reference{}, fmt.Errorf("gemini: reference %d must be inline", i)
		}
		data, err := img.Bytes()
		if err != nil {
			return imageref.Reference{}, &imageref.EncodingError{Reason: "decode reference", Err: err}
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType(), Data: data}})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:        genai.Ptr[float32](1),
		TopK:               genai.Ptr[float32](40),
		TopP:               genai.Ptr[float32](0.95),
		MaxOutputTokens:    8192,
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return imageref.Reference{}, translateGeminiError(err)
	}
	if resp == nil {
		return imageref.Reference{}, domain.ErrNoImageProduced
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return imageref.FromBytes(part.InlineData.Data, mime), nil
		}
	}
	loggerFor(ctx, &g.logger).Debug().Str("provider", ProviderGemini).Str("model", g.model).Int("candidates", len(resp.Candidates)).Msg("gemini returned no inline image")
	return imageref.Reference{}, domain.ErrNoImageProduced
}

func translateGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Provider: ProviderGemini, Status: apiErr.Code, Body: truncateBody(apiErr.Message)}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.ProviderError{Provider: ProviderGemini, Status: apiErrPtr.Code, Body: truncateBody(apiErrPtr.Message)}
	}
	return fmt.Errorf("gemini generate: %w", err)
}

var _ Generator = (*GeminiGenerator)(nil)
