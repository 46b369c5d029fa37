package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lookbook/internal/http/handlers"
	httpapi "lookbook/internal/http/httpapi"
	"lookbook/internal/infra"
	"lookbook/internal/infra/geoip"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire dependencies")
	}
	defer deps.close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
	}
	defer func() { _ = resolver.Close() }()

	router := httpapi.NewRouter(&handlers.App{
		Logger:     logger,
		Generator:  deps.generator,
		Normalizer: deps.normalizer,
		Pipeline:   deps.pipeline,
		Creations:  deps.creations,
		Copywriter: deps.copywriter,
		Publisher:  deps.publisher,

		StoreBackend:   deps.creationsBackend,
		PublishBackend: cfg.PublishBackend,
	}, httpapi.Options{
		Logger:        logger,
		Limiter:       deps.limiter,
		DefaultLocale: cfg.DefaultLocale,
		CountryLookup: resolver.Lookup(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("provider", deps.generator.Name()).
			Str("creations", deps.creationsBackend).
			Str("publish", cfg.PublishBackend).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
