package image

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"lookbook/internal/domain"
	"lookbook/internal/imageref"
)

type stubModels struct {
	mu       sync.Mutex
	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.model = model
	s.contents = contents
	s.config = config
	return s.resp, s.err
}

func imageResponse(data []byte, mime string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				genai.NewPartFromText("here you go"),
				{InlineData: &genai.Blob{MIMEType: mime, Data: data}},
			}},
		}},
	}
}

func TestGeminiGeneratorBuildsInlineParts(t *testing.T) {
	stub := &stubModels{resp: imageResponse([]byte("png-bytes"), "image/png")}
	gen := newGeminiGenerator(stub, "", zerolog.Nop())

	model := imageref.FromBytes([]byte("model"), "image/jpeg")
	product := imageref.FromBytes([]byte("product"), "image/png")
	got, err := gen.Generate(context.Background(), Request{Prompt: "merge", Images: []imageref.Reference{model, product}})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if stub.model != defaultGeminiModel {
		t.Fatalf("model = %q, want %q", stub.model, defaultGeminiModel)
	}
	if len(stub.contents) != 1 || len(stub.contents[0].Parts) != 3 {
		t.Fatalf("unexpected contents: %#v", stub.contents)
	}
	parts := stub.contents[0].Parts
	if parts[0].Text != "merge" {
		t.Fatalf("first part should be the prompt, got %q", parts[0].Text)
	}
	if string(parts[1].InlineData.Data) != "model" || parts[2].InlineData.MIMEType != "image/png" {
		t.Fatalf("image parts out of order: %#v %#v", parts[1].InlineData, parts[2].InlineData)
	}
	if stub.config == nil || stub.config.MaxOutputTokens != 8192 {
		t.Fatalf("generation config not applied: %#v", stub.config)
	}
	if got.String() != imageref.FromBytes([]byte("png-bytes"), "image/png").String() {
		t.Fatalf("unexpected result %q", got.String())
	}
}

func TestGeminiGeneratorRejectsURLReferences(t *testing.T) {
	stub := &stubModels{resp: imageResponse([]byte("x"), "image/png")}
	gen := newGeminiGenerator(stub, "m", zerolog.Nop())
	_, err := gen.Generate(context.Background(), Request{Prompt: "p", Images: []imageref.Reference{imageref.FromURL("https://cdn.example.com/a.jpg")}})
	if err == nil {
		t.Fatalf("expected error for URL reference")
	}
	if stub.calls != 0 {
		t.Fatalf("provider should not be called")
	}
}

func TestGeminiGeneratorNoImage(t *testing.T) {
	stub := &stubModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText("I cannot do that")}},
	}}}}
	gen := newGeminiGenerator(stub, "m", zerolog.Nop())
	_, err := gen.Generate(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, domain.ErrNoImageProduced) {
		t.Fatalf("expected ErrNoImageProduced, got %v", err)
	}
}

func TestGeminiGeneratorTranslatesAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.Kind
	}{
		{name: "value 429", err: genai.APIError{Code: 429, Message: "quota"}, want: domain.KindRateLimited},
		{name: "pointer 402", err: &genai.APIError{Code: 402, Message: "billing"}, want: domain.KindPaymentRequired},
		{name: "500", err: genai.APIError{Code: 500, Message: "internal"}, want: domain.KindProvider},
		{name: "transport", err: errors.New("dial tcp: refused"), want: domain.KindUnhandled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := newGeminiGenerator(&stubModels{err: tc.err}, "m", zerolog.Nop())
			_, err := gen.Generate(context.Background(), Request{Prompt: "p"})
			if got := domain.KindOf(err); got != tc.want {
				t.Fatalf("KindOf() = %q, want %q (err=%v)", got, tc.want, err)
			}
		})
	}
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGeminiGenerator(context.Background(), GeminiOptions{}); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}

func TestGatewayGeneratorPassesURLs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		var payload gatewayRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if payload.Model != defaultGatewayModel {
			t.Errorf("unexpected model: %s", payload.Model)
		}
		if len(payload.Modalities) != 2 || payload.Modalities[0] != "image" {
			t.Errorf("unexpected modalities: %v", payload.Modalities)
		}
		content := payload.Messages[0].Content
		if len(content) != 2 || content[0].Text != "back view" || content[1].ImageURL.URL != "https://cdn.example.com/look.jpg" {
			t.Errorf("unexpected content: %+v", content)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,QUJD"}}]}}]}`))
	}))
	defer ts.Close()

	gen, err := NewGatewayGenerator(GatewayOptions{APIKey: "test-key", BaseURL: ts.URL, HTTPClient: ts.Client()})
	if err != nil {
		t.Fatalf("NewGatewayGenerator error: %v", err)
	}
	if gen.Form() != imageref.FormURL {
		t.Fatalf("gateway should accept URL references")
	}
	got, err := gen.Generate(context.Background(), Request{Prompt: "back view", Images: []imageref.Reference{imageref.FromURL("https://cdn.example.com/look.jpg")}})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got.String() != "data:image/png;base64,QUJD" {
		t.Fatalf("unexpected image: %s", got.String())
	}
}

func TestGatewayGeneratorStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   domain.Kind
	}{
		{status: http.StatusTooManyRequests, want: domain.KindRateLimited},
		{status: http.StatusPaymentRequired, want: domain.KindPaymentRequired},
		{status: http.StatusBadGateway, want: domain.KindProvider},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tc.status)
			}))
			defer ts.Close()
			gen, _ := NewGatewayGenerator(GatewayOptions{APIKey: "k", BaseURL: ts.URL, HTTPClient: ts.Client()})
			_, err := gen.Generate(context.Background(), Request{Prompt: "p"})
			if got := domain.KindOf(err); got != tc.want {
				t.Fatalf("KindOf() = %q, want %q", got, tc.want)
			}
			var perr *domain.ProviderError
			if !errors.As(err, &perr) || perr.Body != "upstream says no" {
				t.Fatalf("unexpected provider error: %v", err)
			}
		})
	}
}

func TestGatewayGeneratorNoImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"sorry"}}]}`))
	}))
	defer ts.Close()
	gen, _ := NewGatewayGenerator(GatewayOptions{APIKey: "k", BaseURL: ts.URL, HTTPClient: ts.Client()})
	_, err := gen.Generate(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, domain.ErrNoImageProduced) {
		t.Fatalf("expected ErrNoImageProduced, got %v", err)
	}
}
