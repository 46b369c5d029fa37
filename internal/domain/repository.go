package domain

import "context"

// CreationRepository reads saved creations. Implementations return
// ErrNotFound when no row matches.
type CreationRepository interface {
	GetByID(ctx context.Context, id string) (*Creation, error)
}
