package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedContentType is returned for payloads that are not a known
// image format.
var ErrUnsupportedContentType = errors.New("storage: unsupported content type")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// FileStore keeps generated images under a local directory that a static
// file server or CDN origin exposes. Objects are named <prefix>/<uuid><ext>
// so the extension always matches the stored bytes.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: publish dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure publish dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Put writes an image under a fresh key and returns that key. contentType
// may be empty or wrong; the payload is sniffed when it is not an image type
// the store knows.
func (s *FileStore) Put(ctx context.Context, prefix string, data []byte, contentType string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ct, err := resolveContentType(data, contentType)
	if err != nil {
		return "", err
	}
	key, err := sanitizeKey(objectKey(prefix, ct))
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", key, err)
	}
	return key, nil
}

// resolveContentType trusts a declared image type when it is one we can name
// and falls back to sniffing the bytes.
func resolveContentType(data []byte, declared string) (string, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		if _, ok := extensions[mt]; ok {
			return mt, nil
		}
	}
	sniffed := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		if _, ok := extensions[mt]; ok {
			return mt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, declared)
}

func objectKey(prefix, contentType string) string {
	name := uuid.NewString() + extensions[contentType]
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
