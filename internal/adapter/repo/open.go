package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
	"lookbook/internal/infra"
)

// Backend names reported by Open.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendDisabled = "disabled"
)

// Open picks the creations store from cfg: Supabase when its URL and key are
// set, then DATABASE_URL through the SQL runner, else a disabled store. The
// returned close func is never nil.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.CreationRepository, string, func(), error) {
	noop := func() {}
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		store, err := NewSupabaseCreationRepository(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			return nil, "", noop, err
		}
		return store, BackendSupabase, noop, nil
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if errors.Is(err, infra.ErrNoDatabase) {
		return DisabledCreationRepository{}, BackendDisabled, noop, nil
	}
	if err != nil {
		return nil, "", noop, fmt.Errorf("open creations store: %w", err)
	}
	return NewCreationRepository(infra.NewSQLRunner(pool, logger)), BackendPostgres, pool.Close, nil
}
