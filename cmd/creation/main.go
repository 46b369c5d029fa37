// Command creation prints a stored creation, using the same store selection
// as the API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lookbook/internal/adapter/repo"
	"lookbook/internal/domain"
	"lookbook/internal/infra"
)

func main() {
	var idFlag string
	flag.StringVar(&idFlag, "id", "", "creation ID to look up")
	flag.Parse()

	_ = godotenv.Load()

	id := strings.TrimSpace(idFlag)
	if id == "" {
		exitWithError(errors.New("-id must be provided"))
	}

	cfg := &infra.Config{
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SupabaseURL:        strings.TrimSpace(os.Getenv("SUPABASE_URL")),
		SupabaseServiceKey: strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY")),
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "creation").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, backend, closeStore, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	defer closeStore()
	if backend == repo.BackendDisabled {
		exitWithError(errors.New("SUPABASE_URL/SUPABASE_SERVICE_KEY or DATABASE_URL is required"))
	}

	creation, err := store.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		exitWithError(fmt.Errorf("creation %s not found", id))
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to load creation: %w", err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{
		"id":       creation.ID,
		"imageUrl": creation.ImageURL,
		"backend":  backend,
	})
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
