package image

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"lookbook/internal/imageref"
)

// Request is a single generation call: a prompt plus zero, one or two
// reference images, already normalized to the generator's Form.
type Request struct {
	Prompt string
	Images []imageref.Reference
}

// Generator issues one outbound generation call and extracts the produced
// image. Non-success responses surface as *domain.ProviderError and answers
// without an image as domain.ErrNoImageProduced.
type Generator interface {
	Name() string
	Form() imageref.Form
	Generate(ctx context.Context, req Request) (imageref.Reference, error)
}

const (
	ProviderGemini  = "gemini"
	ProviderGateway = "gateway"
)

// maxErrorBody caps how much of an upstream error body is kept.
const maxErrorBody = 2048

func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > maxErrorBody {
		return body[:maxErrorBody]
	}
	return body
}

func validate(req Request) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("image: prompt is required")
	}
	for i, img := range req.Images {
		if img.IsZero() {
			return fmt.Errorf("image: reference %d is empty", i)
		}
	}
	return nil
}

// loggerFor returns the request logger attached to ctx, falling back to the
// generator's own logger outside a request.
func loggerFor(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
