package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"lookbook/internal/http/handlers"
	"lookbook/internal/middleware"
)

type Options struct {
	Logger        zerolog.Logger
	Limiter       middleware.Limiter
	DefaultLocale string
	CountryLookup middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	// CORS runs first so preflight requests skip every other stage.
	r.Use(
		middleware.CORS,
		middleware.RequestID(opts.Logger),
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
	)
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter, opts.Logger))
	}
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)

	r.Route("/functions/v1", func(r chi.Router) {
		r.Post("/generate-clothing", app.GenerateClothing)
		r.Post("/generate-model", app.GenerateModel)
		r.Post("/extract-clothing", app.ExtractClothing)
		r.Post("/merge-images", app.MergeImages)
		r.Post("/generate-color-variations", app.GenerateColorVariations)
		r.Post("/generate-pose-pack", app.GeneratePosePack)
		r.Post("/generate-marketplace-content", app.GenerateMarketplaceContent)
	})

	return r
}
