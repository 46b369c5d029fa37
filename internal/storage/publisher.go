package storage

import (
	"context"
	"fmt"
	"strings"

	"lookbook/internal/imageref"
)

// Publisher hosts a produced image and returns a URL reference to it. URL
// references are returned unchanged.
type Publisher interface {
	Publish(ctx context.Context, ref imageref.Reference) (imageref.Reference, error)
}

// Disabled returns a Publisher that leaves every reference as it is.
func Disabled() Publisher { return disabledPublisher{} }

type disabledPublisher struct{}

func (disabledPublisher) Publish(_ context.Context, ref imageref.Reference) (imageref.Reference, error) {
	return ref, nil
}

// FilePublisher writes images under a FileStore and serves them from baseURL.
type FilePublisher struct {
	store   *FileStore
	baseURL string
	prefix  string
}

func NewFilePublisher(store *FileStore, baseURL, prefix string) *FilePublisher {
	return &FilePublisher{
		store:   store,
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		prefix:  strings.Trim(prefix, "/"),
	}
}

func (p *FilePublisher) Publish(ctx context.Context, ref imageref.Reference) (imageref.Reference, error) {
	if !ref.IsInline() {
		return ref, nil
	}
	data, err := ref.Bytes()
	if err != nil {
		return imageref.Reference{}, fmt.Errorf("storage: decode image: %w", err)
	}
	key, err := p.store.Put(ctx, p.prefix, data, ref.MIMEType())
	if err != nil {
		return imageref.Reference{}, err
	}
	if p.baseURL == "" {
		return imageref.FromURL("/" + key), nil
	}
	return imageref.FromURL(p.baseURL + "/" + key), nil
}

var (
	_ Publisher = disabledPublisher{}
	_ Publisher = (*FilePublisher)(nil)
)
