// Package imageref models image references that travel between callers and
// generation providers, and converts them between inline and URL forms.
package imageref

import (
	"encoding/base64"
	"strings"
)

// Form is the representation a provider expects for reference images.
type Form int

const (
	// FormInline means raw base64 bytes embedded in the provider payload.
	FormInline Form = iota
	// FormURL means the reference is forwarded as-is for the provider to fetch.
	FormURL
)

func (f Form) String() string {
	if f == FormURL {
		return "url"
	}
	return "inline"
}

const defaultMIMEType = "image/jpeg"

// Reference is either a remote URL or an inline payload. Exactly one of the
// two is set. Values are never mutated; helpers return copies.
type Reference struct {
	url      string
	data     string
	mimeType string
}

// Parse classifies raw as a data URI, an http(s) URL, or bare base64.
func Parse(raw string) Reference {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return Reference{}
	case strings.HasPrefix(lower, "data:"):
		mime, body := splitDataURI(raw)
		return Reference{data: body, mimeType: mime}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Reference{url: raw}
	default:
		return Reference{data: raw}
	}
}

// FromURL builds a URL reference.
func FromURL(u string) Reference { return Reference{url: strings.TrimSpace(u)} }

// FromBytes builds an inline reference from raw bytes.
func FromBytes(data []byte, mimeType string) Reference {
	return Reference{data: base64.StdEncoding.EncodeToString(data), mimeType: mimeType}
}

// FromBase64 builds an inline reference from an already encoded body.
func FromBase64(body, mimeType string) Reference {
	return Reference{data: body, mimeType: mimeType}
}

func (r Reference) IsZero() bool   { return r.url == "" && r.data == "" }
func (r Reference) IsURL() bool    { return r.url != "" }
func (r Reference) IsInline() bool { return r.url == "" && r.data != "" }
func (r Reference) URL() string    { return r.url }

// Base64 returns the raw encoded body of an inline reference.
func (r Reference) Base64() string { return r.data }

// MIMEType returns the declared MIME type, defaulting to image/jpeg.
func (r Reference) MIMEType() string {
	if r.mimeType == "" {
		return defaultMIMEType
	}
	return r.mimeType
}

// Bytes decodes an inline payload.
func (r Reference) Bytes() ([]byte, error) {
	return decodeBase64(r.data)
}

// String renders the reference the way API consumers receive it: URLs as is,
// inline payloads as data URIs.
func (r Reference) String() string {
	if r.url != "" {
		return r.url
	}
	if r.data == "" {
		return ""
	}
	return "data:" + r.MIMEType() + ";base64," + r.data
}

func splitDataURI(raw string) (string, string) {
	header, body, ok := strings.Cut(raw, ",")
	if !ok {
		return "", ""
	}
	mime := strings.TrimPrefix(header, "data:")
	mime = strings.TrimPrefix(mime, "DATA:")
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime), strings.TrimSpace(body)
}

func decodeBase64(body string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
}
