package variation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
	"lookbook/internal/imagegen"
	"lookbook/internal/imageref"
	"lookbook/internal/providers/image"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type stubGenerator struct {
	mu       sync.Mutex
	form     imageref.Form
	calls    []string
	images   []imageref.Reference
	failOn   map[string]error
	delay    time.Duration
	inFlight int32
	maxSeen  int32
}

func (s *stubGenerator) Name() string        { return "stub" }
func (s *stubGenerator) Form() imageref.Form { return s.form }

func (s *stubGenerator) Generate(ctx context.Context, req image.Request) (imageref.Reference, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&s.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&s.maxSeen, seen, n) {
			break
		}
	}
	axis := axisFromPrompt(req.Prompt)
	s.mu.Lock()
	s.calls = append(s.calls, axis)
	s.images = append(s.images, req.Images...)
	err := s.failOn[axis]
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return imageref.Reference{}, ctx.Err()
		}
	}
	if err != nil {
		return imageref.Reference{}, err
	}
	return imageref.FromURL("https://cdn.example.com/" + axis + ".png"), nil
}

func axisFromPrompt(prompt string) string {
	const marker = "ONLY change the color of the clothing item to "
	if idx := strings.Index(prompt, marker); idx >= 0 {
		rest := prompt[idx+len(marker):]
		return rest[:strings.Index(rest, ".\n")]
	}
	for _, p := range imagegen.PosePack {
		if strings.HasPrefix(prompt, p.Instruction) {
			return p.Name
		}
	}
	return prompt
}

func axisNames(out []Output) []string {
	names := make([]string, len(out))
	for i, o := range out {
		names[i] = o.Axis
	}
	return names
}

func TestRunAllSucceedKeepsAxisOrder(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"red", "blue", "green"}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got := strings.Join(axisNames(out), ",")
	if got != "red,blue,green" {
		t.Fatalf("outputs = %s, want red,blue,green", got)
	}
	if out[1].Image.URL() != "https://cdn.example.com/blue.png" {
		t.Fatalf("unexpected image: %s", out[1].Image.URL())
	}
}

func TestRunSkipsNonFatalFailures(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL, failOn: map[string]error{
		"B": &domain.ProviderError{Status: http.StatusInternalServerError},
	}}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B", "C"}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(axisNames(out), ","); got != "A,C" {
		t.Fatalf("outputs = %s, want A,C", got)
	}
}

func TestRunSkipsMissingImage(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL, failOn: map[string]error{
		"frontal": domain.ErrNoImageProduced,
		"perfil":  domain.ErrNoImageProduced,
	}}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), PoseAxes(imagegen.PosePack))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(axisNames(out), ","); got != "costas,detalhe_superior,detalhe_inferior" {
		t.Fatalf("outputs = %s", got)
	}
}

func TestRunAbortsOnRateLimit(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusPaymentRequired} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			gen := &stubGenerator{form: imageref.FormURL, failOn: map[string]error{
				"C": &domain.ProviderError{Status: status},
			}}
			p := New(gen, nil, Options{Logger: zerolog.Nop()})
			out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B", "C", "D"}))
			if err == nil {
				t.Fatalf("expected error")
			}
			if out != nil {
				t.Fatalf("partial results returned: %v", out)
			}
			var perr *domain.ProviderError
			if !errors.As(err, &perr) || perr.Status != status {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(gen.calls) != 3 {
				t.Fatalf("calls = %v, want the run to stop after C", gen.calls)
			}
		})
	}
}

func TestRunEmptyResultIsSuccess(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL, failOn: map[string]error{"A": domain.ErrNoImageProduced}}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A"}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestRunNormalizesBaseOnceForInlineProviders(t *testing.T) {
	var fetches int32
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&fetches, 1)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/jpeg"}},
			Body:       io.NopCloser(strings.NewReader("jpeg-bytes")),
		}, nil
	})}
	normalizer := imageref.NewNormalizer(imageref.Options{HTTPClient: client})
	gen := &stubGenerator{form: imageref.FormInline}
	p := New(gen, normalizer, Options{Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B", "C"}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("fetches = %d, want 1", got)
	}
	want := imageref.FromBytes([]byte("jpeg-bytes"), "image/jpeg")
	for _, img := range gen.images {
		if img != want {
			t.Fatalf("generator received %#v, want %#v", img, want)
		}
	}
}

func TestRunStripsInlinePrefix(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormInline}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	if _, err := p.Run(context.Background(), imageref.Parse("data:image/png;base64,QUJD"), ColorAxes([]string{"A", "B"})); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, img := range gen.images {
		if !img.IsInline() || img.Base64() != "QUJD" {
			t.Fatalf("generator received %#v, want stripped inline payload", img)
		}
	}
}

func TestRunNormalizationFailureAborts(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusForbidden, Body: http.NoBody}, nil
	})}
	gen := &stubGenerator{form: imageref.FormInline}
	p := New(gen, imageref.NewNormalizer(imageref.Options{HTTPClient: client}), Options{Logger: zerolog.Nop()})
	_, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A"}))
	var fetchErr *imageref.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("generator called despite normalization failure")
	}
}

func TestRunURLProvidersSkipNormalization(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	base := imageref.FromURL("https://cdn.example.com/base.jpg")
	if _, err := p.Run(context.Background(), base, ColorAxes([]string{"A"})); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if gen.images[0] != base {
		t.Fatalf("URL reference was rewritten: %#v", gen.images[0])
	}
}

func TestRunSequentialByDefault(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL, delay: 5 * time.Millisecond}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	if _, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B", "C"})); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if gen.maxSeen != 1 {
		t.Fatalf("max in-flight = %d, want 1", gen.maxSeen)
	}
	if got := strings.Join(gen.calls, ","); got != "A,B,C" {
		t.Fatalf("call order = %s", got)
	}
}

func TestRunConcurrentPreservesOrder(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL, delay: 10 * time.Millisecond, failOn: map[string]error{
		"B": errors.New("flaky"),
	}}
	p := New(gen, nil, Options{Concurrency: 4, Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B", "C", "D"}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(axisNames(out), ","); got != "A,C,D" {
		t.Fatalf("outputs = %s, want A,C,D", got)
	}
	if gen.maxSeen > 4 {
		t.Fatalf("max in-flight = %d, want <= 4", gen.maxSeen)
	}
}

func TestRunConcurrentAbortCancelsSiblings(t *testing.T) {
	gen := &stubGenerator{form: imageref.FormURL, delay: 50 * time.Millisecond, failOn: map[string]error{
		"A": &domain.ProviderError{Status: http.StatusTooManyRequests},
	}}
	p := New(gen, nil, Options{Concurrency: 2, Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B", "C", "D", "E"}))
	if domain.KindOf(err) != domain.KindRateLimited {
		t.Fatalf("expected rate limit, got %v", err)
	}
	if out != nil {
		t.Fatalf("partial results returned: %v", out)
	}
}

func TestRunSkipsAxisOnClientTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		axis := axisFromPrompt(payload.Messages[0].Content[0].Text)
		if axis == "blue" {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"images":[{"type":"image_url","image_url":{"url":"https://cdn.example.com/` + axis + `.png"}}]}}]}`))
	}))
	defer ts.Close()

	gen, err := image.NewGatewayGenerator(image.GatewayOptions{
		APIKey:     "key",
		BaseURL:    ts.URL,
		HTTPClient: &http.Client{Timeout: 100 * time.Millisecond},
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewGatewayGenerator: %v", err)
	}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	out, err := p.Run(context.Background(), imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"red", "blue", "green"}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(axisNames(out), ","); got != "red,green" {
		t.Fatalf("outputs = %s, want red,green", got)
	}
}

func TestRunAbortsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &stubGenerator{form: imageref.FormURL, delay: time.Second}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	out, err := p.Run(ctx, imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B"}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out != nil {
		t.Fatalf("partial results returned: %v", out)
	}
}

func TestRunLogsWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := zerolog.New(&buf).With().Str("request_id", "req-7").Logger()
	ctx := reqLogger.WithContext(context.Background())

	gen := &stubGenerator{form: imageref.FormURL, failOn: map[string]error{"B": domain.ErrNoImageProduced}}
	p := New(gen, nil, Options{Logger: zerolog.Nop()})
	if _, err := p.Run(ctx, imageref.FromURL("https://cdn.example.com/base.jpg"), ColorAxes([]string{"A", "B"})); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	var skipped map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("log line not json: %s", line)
		}
		if entry["message"] == "variation skipped" {
			skipped = entry
		}
	}
	if skipped == nil {
		t.Fatalf("no skip entry in %s", buf.String())
	}
	if skipped["request_id"] != "req-7" || skipped["axis"] != "B" || skipped["component"] != "variation" {
		t.Fatalf("unexpected skip entry: %v", skipped)
	}
}
