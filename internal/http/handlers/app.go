package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
	"lookbook/internal/imageref"
	"lookbook/internal/providers/image"
	"lookbook/internal/providers/prompt"
	"lookbook/internal/storage"
	"lookbook/internal/variation"
)

// maxBodyBytes bounds request bodies; inline images make them large.
const maxBodyBytes = 64 << 20

type App struct {
	Logger     zerolog.Logger
	Generator  image.Generator
	Normalizer *imageref.Normalizer
	Pipeline   *variation.Pipeline
	Creations  domain.CreationRepository
	Copywriter prompt.Copywriter
	Publisher  storage.Publisher

	// Reported by Health only.
	StoreBackend   string
	PublishBackend string
}

type healthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Store    string `json:"store"`
	Publish  string `json:"publish"`
}

// Health reports liveness plus the backends this instance was wired with.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Store: a.StoreBackend, Publish: a.PublishBackend}
	if a.Generator != nil {
		resp.Provider = a.Generator.Name()
	}
	if resp.Store == "" {
		resp.Store = "disabled"
	}
	if resp.Publish == "" {
		resp.Publish = "none"
	}
	a.json(w, http.StatusOK, resp)
}

// log returns the request-scoped logger when ctx carries one.
func (a *App) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.BadRequest("request body is empty")
		}
		return domain.BadRequest("invalid JSON body")
	}
	return nil
}

// generateOne runs a single generation call with refs normalized to the
// generator's form and returns the published result.
func (a *App) generateOne(ctx context.Context, instruction string, refs ...imageref.Reference) (string, error) {
	images, err := a.Normalizer.NormalizeAll(ctx, refs, a.Generator.Form())
	if err != nil {
		return "", err
	}
	out, err := a.Generator.Generate(ctx, image.Request{Prompt: instruction, Images: images})
	if err != nil {
		return "", err
	}
	return a.publish(ctx, out).String(), nil
}

// publish hosts ref when a publisher is configured. Failures keep the
// inline value.
func (a *App) publish(ctx context.Context, ref imageref.Reference) imageref.Reference {
	if a.Publisher == nil {
		return ref
	}
	hosted, err := a.Publisher.Publish(ctx, ref)
	if err != nil {
		a.log(ctx).Warn().Err(err).Msg("publish image failed, returning inline payload")
		return ref
	}
	return hosted
}
