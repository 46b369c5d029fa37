package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"lookbook/internal/domain"
)

const creationsTable = "creations"

// tableClient is the PostgREST surface shared by *supabase.Client and
// *postgrest.Client.
type tableClient interface {
	From(table string) *postgrest.QueryBuilder
}

// CreationRepositorySupabase reads creations through Supabase PostgREST.
type CreationRepositorySupabase struct {
	client tableClient
}

// NewSupabaseCreationRepository connects with the service key.
func NewSupabaseCreationRepository(url, serviceKey string) (*CreationRepositorySupabase, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &CreationRepositorySupabase{client: client}, nil
}

type creationRow struct {
	ID       any    `json:"id"`
	ImageURL string `json:"image_url"`
}

// GetByID loads a single creation. An empty result set means not found, and
// so does an id that is not a UUID, since PostgREST rejects those with 22P02.
func (r *CreationRepositorySupabase) GetByID(ctx context.Context, id string) (*domain.Creation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("creation %s: %w", id, domain.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := r.client.From(creationsTable).
		Select("id,image_url", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("load creation %s: %w", id, err)
	}
	var rows []creationRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse creation %s: %w", id, err)
	}
	if len(rows) == 0 || strings.TrimSpace(rows[0].ImageURL) == "" {
		return nil, fmt.Errorf("creation %s: %w", id, domain.ErrNotFound)
	}
	return &domain.Creation{
		ID:       fmt.Sprint(rows[0].ID),
		ImageURL: rows[0].ImageURL,
	}, nil
}

var _ domain.CreationRepository = (*CreationRepositorySupabase)(nil)
