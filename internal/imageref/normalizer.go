package imageref

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBytes bounds how much of a remote image is buffered in memory.
const DefaultMaxBytes int64 = 20 << 20

// FetchError reports a remote image that could not be retrieved.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch image %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch image %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EncodingError reports a payload that could not be turned into base64.
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode image: %s: %v", e.Reason, e.Err)
	}
	return "encode image: " + e.Reason
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Normalizer converts references into the form a provider requires.
type Normalizer struct {
	client   *http.Client
	maxBytes int64
}

// Options configures a Normalizer.
type Options struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewNormalizer returns a Normalizer. Zero options use http.DefaultClient and
// DefaultMaxBytes.
func NewNormalizer(opts Options) *Normalizer {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Normalizer{client: client, maxBytes: maxBytes}
}

// Normalize returns ref in the requested form. Inline to inline is
// idempotent; URL passthrough never performs I/O.
func (n *Normalizer) Normalize(ctx context.Context, ref Reference, form Form) (Reference, error) {
	if ref.IsZero() {
		return Reference{}, &EncodingError{Reason: "empty reference"}
	}
	if form == FormURL {
		return ref, nil
	}
	if ref.IsInline() {
		return Reference{data: ref.data, mimeType: ref.mimeType}, nil
	}
	return n.fetch(ctx, ref.url)
}

// NormalizeAll applies Normalize to every reference, failing on the first error.
func (n *Normalizer) NormalizeAll(ctx context.Context, refs []Reference, form Form) ([]Reference, error) {
	out := make([]Reference, 0, len(refs))
	for _, ref := range refs {
		normalized, err := n.Normalize(ctx, ref, form)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

func (n *Normalizer) fetch(ctx context.Context, url string) (Reference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Reference{}, &FetchError{URL: url, Err: err}
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return Reference{}, &FetchError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reference{}, &FetchError{URL: url, Status: resp.StatusCode}
	}
	if resp.ContentLength > n.maxBytes {
		return Reference{}, &EncodingError{Reason: fmt.Sprintf("image exceeds %d bytes", n.maxBytes)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, n.maxBytes+1))
	if err != nil {
		return Reference{}, &EncodingError{Reason: "read body", Err: err}
	}
	if int64(len(data)) > n.maxBytes {
		return Reference{}, &EncodingError{Reason: fmt.Sprintf("image exceeds %d bytes", n.maxBytes)}
	}
	if len(data) == 0 {
		return Reference{}, &EncodingError{Reason: "empty body", Err: errors.New("no bytes")}
	}
	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return FromBytes(data, mime), nil
}
