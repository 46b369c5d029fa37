package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
	"lookbook/internal/imageref"
)

const (
	defaultGatewayBaseURL = "https://ai.gateway.lovable.dev/v1"
	defaultGatewayModel   = "google/gemini-2.5-flash-image-preview"
)

// GatewayOptions configures the chat-completions image integration.
type GatewayOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// GatewayGenerator talks to an OpenAI-compatible chat-completions gateway that
// returns generated images on the assistant message.
type GatewayGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  zerolog.Logger
}

type gatewayRequest struct {
	Model      string           `json:"model"`
	Messages   []gatewayMessage `json:"messages"`
	Modalities []string         `json:"modalities"`
}

type gatewayMessage struct {
	Role    string           `json:"role"`
	Content []gatewayContent `json:"content"`
}

type gatewayContent struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	ImageURL *gatewayImageURL `json:"image_url,omitempty"`
}

type gatewayImageURL struct {
	URL string `json:"url"`
}

type gatewayResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				Type     string          `json:"type"`
				ImageURL gatewayImageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

func NewGatewayGenerator(opts GatewayOptions) (*GatewayGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gateway api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGatewayBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGatewayModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayGenerator{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		model:   model,
		client:  client,
		logger:  opts.Logger,
	}, nil
}

func (g *GatewayGenerator) Name() string { return ProviderGateway }

// Form is URL passthrough: the gateway fetches remote references itself.
func (g *GatewayGenerator) Form() imageref.Form { return imageref.FormURL }

func (g *GatewayGenerator) Generate(ctx context.Context, req Request) (imageref.Reference, error) {
	if err := validate(req); err != nil {
		return imageref.Reference{}, err
	}
	content := []gatewayContent{{Type: "text", Text: req.Prompt}}
	for _, img := range req.Images {
		content = append(content, gatewayContent{Type: "image_url", ImageURL: &gatewayImageURL{URL: img.String()}})
	}
	payload := gatewayRequest{
		Model:      g.model,
		Messages:   []gatewayMessage{{Role: "user", Content: content}},
		Modalities: []string{"image", "text"},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return imageref.Reference{}, fmt.Errorf("gateway: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return imageref.Reference{}, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return imageref.Reference{}, fmt.Errorf("gateway: http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return imageref.Reference{}, &domain.ProviderError{Provider: ProviderGateway, Status: resp.StatusCode, Body: truncateBody(string(body))}
	}
	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return imageref.Reference{}, fmt.Errorf("gateway: decode response: %w", err)
	}
	if len(out.Choices) == 0 || len(out.Choices[0].Message.Images) == 0 {
		loggerFor(ctx, &g.logger).Debug().Str("provider", ProviderGateway).Str("model", g.model).Int("choices", len(out.Choices)).Msg("gateway returned no image")
		return imageref.Reference{}, domain.ErrNoImageProduced
	}
	ref := imageref.Parse(out.Choices[0].Message.Images[0].ImageURL.URL)
	if ref.IsZero() {
		return imageref.Reference{}, domain.ErrNoImageProduced
	}
	return ref, nil
}

var _ Generator = (*GatewayGenerator)(nil)
