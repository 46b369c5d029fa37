package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"lookbook/internal/domain"
	"lookbook/internal/infra"
	"lookbook/internal/sqlinline"
)

// CreationRepositoryPG implements domain.CreationRepository on PostgreSQL.
type CreationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCreationRepository constructs a repository over the SQL runner.
func NewCreationRepository(sql infra.SQLExecutor) *CreationRepositoryPG {
	return &CreationRepositoryPG{sql: sql}
}

// GetByID loads a single creation.
func (r *CreationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Creation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	var c domain.Creation
	err := r.sql.QueryRow(ctx, sqlinline.QCreationByID, id).Scan(&c.ID, &c.ImageURL, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("creation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load creation %s: %w", id, err)
	}
	if strings.TrimSpace(c.ImageURL) == "" {
		return nil, fmt.Errorf("creation %s has no image: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// DisabledCreationRepository is used when no backing store is configured.
type DisabledCreationRepository struct{}

func (DisabledCreationRepository) GetByID(_ context.Context, id string) (*domain.Creation, error) {
	return nil, fmt.Errorf("creation %s: store disabled: %w", id, domain.ErrNotFound)
}

var (
	_ domain.CreationRepository = (*CreationRepositoryPG)(nil)
	_ domain.CreationRepository = DisabledCreationRepository{}
)
