package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"lookbook/internal/adapter/repo"
	"lookbook/internal/domain"
	"lookbook/internal/imageref"
	"lookbook/internal/infra"
	"lookbook/internal/middleware"
	"lookbook/internal/providers/image"
	"lookbook/internal/providers/prompt"
	"lookbook/internal/storage"
	"lookbook/internal/variation"
)

type dependencies struct {
	generator        image.Generator
	normalizer       *imageref.Normalizer
	pipeline         *variation.Pipeline
	creations        domain.CreationRepository
	creationsBackend string
	copywriter       prompt.Copywriter
	publisher        storage.Publisher
	limiter          middleware.Limiter
	closers          []func()
}

func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func wire(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*dependencies, error) {
	d := &dependencies{}

	// Provider calls have no deadline of their own unless configured; the
	// request context still cancels them.
	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}

	gen, err := newGenerator(ctx, cfg, providerClient, logger)
	if err != nil {
		return nil, err
	}
	d.generator = gen
	d.normalizer = imageref.NewNormalizer(imageref.Options{HTTPClient: providerClient, MaxBytes: cfg.ImageFetchMaxBytes})
	d.pipeline = variation.New(gen, d.normalizer, variation.Options{
		Concurrency: cfg.VariationConcurrency,
		Logger:      logger.With().Str("component", "variation").Logger(),
	})

	creations, backend, closeCreations, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		d.close()
		return nil, err
	}
	d.creations, d.creationsBackend = creations, backend
	d.closers = append(d.closers, closeCreations)

	d.copywriter, err = newCopywriter(ctx, cfg, providerClient, logger)
	if err != nil {
		d.close()
		return nil, err
	}

	d.publisher, err = newPublisher(ctx, cfg)
	if err != nil {
		d.close()
		return nil, err
	}

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		d.close()
		return nil, err
	}
	if cfg.RateLimitPerMin > 0 {
		if rdb != nil {
			d.limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, time.Minute)
			d.closers = append(d.closers, func() { _ = rdb.Close() })
		} else {
			d.limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
		}
	} else if rdb != nil {
		_ = rdb.Close()
	}

	return d, nil
}

func newGenerator(ctx context.Context, cfg *infra.Config, client *http.Client, logger zerolog.Logger) (image.Generator, error) {
	logger = logger.With().Str("component", "generator").Logger()
	switch cfg.ImageProvider {
	case infra.ImageProviderGemini:
		gen, err := image.NewGeminiGenerator(ctx, image.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	case infra.ImageProviderGateway:
		gen, err := image.NewGatewayGenerator(image.GatewayOptions{
			APIKey:     cfg.GatewayAPIKey,
			BaseURL:    cfg.GatewayBaseURL,
			Model:      cfg.GatewayImageModel,
			HTTPClient: client,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
	return nil, fmt.Errorf("unsupported image provider %q", cfg.ImageProvider)
}

// newCopywriter chains gateway, then Gemini, then the static template,
// skipping links without credentials.
func newCopywriter(ctx context.Context, cfg *infra.Config, client *http.Client, logger zerolog.Logger) (prompt.Copywriter, error) {
	onFallback := func(provider string) func(string, error) {
		return func(reason string, err error) {
			logger.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("copywriter fallback")
		}
	}

	var chain prompt.Copywriter = prompt.NewStaticCopywriter()
	if cfg.GeminiAPIKey != "" {
		gemini, err := prompt.NewGeminiCopywriter(ctx, prompt.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
			Fallback:   chain,
			OnFallback: onFallback("gemini"),
		})
		if err != nil {
			return nil, err
		}
		chain = gemini
	}
	if cfg.GatewayAPIKey != "" {
		chain = prompt.NewGatewayCopywriter(prompt.GatewayOptions{
			APIKey:     cfg.GatewayAPIKey,
			Model:      cfg.GatewayTextModel,
			BaseURL:    cfg.GatewayBaseURL,
			HTTPClient: client,
			Fallback:   chain,
			OnFallback: onFallback("gateway"),
		})
	}
	return chain, nil
}

func newPublisher(ctx context.Context, cfg *infra.Config) (storage.Publisher, error) {
	switch cfg.PublishBackend {
	case infra.PublishFS:
		store, err := storage.NewFileStore(cfg.PublishDir)
		if err != nil {
			return nil, err
		}
		return storage.NewFilePublisher(store, cfg.PublishBaseURL, ""), nil
	case infra.PublishS3:
		pub, err := storage.NewS3Publisher(ctx, storage.S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicURL:      cfg.S3PublicURL,
			KeyPrefix:      cfg.S3Prefix,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return pub, nil
	}
	return storage.Disabled(), nil
}
