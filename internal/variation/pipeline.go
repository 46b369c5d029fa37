// Package variation fans a single base image out across an ordered list of
// axis values (colors, camera poses) and collects the produced images.
package variation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lookbook/internal/domain"
	"lookbook/internal/imagegen"
	"lookbook/internal/imageref"
	"lookbook/internal/providers/image"
)

// Axis is one unit of work: a label and the prompt that produces it.
type Axis struct {
	Name   string
	Prompt string
}

// Output is a successful axis result.
type Output struct {
	Axis  string
	Image imageref.Reference
}

// Options configures a Pipeline.
type Options struct {
	// Concurrency bounds in-flight generation calls. Values below 2 run the
	// axes strictly one after another.
	Concurrency int
	Logger      zerolog.Logger
}

// Pipeline runs a generator once per axis value.
type Pipeline struct {
	gen         image.Generator
	normalizer  *imageref.Normalizer
	concurrency int
	logger      zerolog.Logger
}

func New(gen image.Generator, normalizer *imageref.Normalizer, opts Options) *Pipeline {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if normalizer == nil {
		normalizer = imageref.NewNormalizer(imageref.Options{})
	}
	return &Pipeline{gen: gen, normalizer: normalizer, concurrency: concurrency, logger: opts.Logger}
}

// ColorAxes turns color names into recolor tasks.
func ColorAxes(colors []string) []Axis {
	axes := make([]Axis, 0, len(colors))
	for _, c := range colors {
		axes = append(axes, Axis{Name: c, Prompt: imagegen.ColorEditPrompt(c)})
	}
	return axes
}

// PoseAxes turns the pose table into re-render tasks.
func PoseAxes(poses []imagegen.Pose) []Axis {
	axes := make([]Axis, 0, len(poses))
	for _, p := range poses {
		axes = append(axes, Axis{Name: p.Name, Prompt: imagegen.PoseEditPrompt(p)})
	}
	return axes
}

// Run normalizes base once and generates one image per axis. Outputs follow
// axis order with failed axes dropped. Rate-limit and payment-required
// errors abort the whole run and discard every result, as does cancellation
// of ctx itself.
func (p *Pipeline) Run(ctx context.Context, base imageref.Reference, axes []Axis) ([]Output, error) {
	ref, err := p.normalizer.Normalize(ctx, base, p.gen.Form())
	if err != nil {
		return nil, err
	}

	log := p.loggerFor(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	slots := make([]*Output, len(axes))

	for i, axis := range axes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := p.gen.Generate(gctx, image.Request{Prompt: axis.Prompt, Images: []imageref.Reference{ref}})
			if err != nil {
				if domain.IsFatal(err) {
					return fmt.Errorf("variation %q: %w", axis.Name, err)
				}
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				log.Warn().
					Err(err).
					Str("axis", axis.Name).
					Str("kind", string(domain.KindOf(err))).
					Str("provider", p.gen.Name()).
					Msg("variation skipped")
				return nil
			}
			slots[i] = &Output{Axis: axis.Name, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Output, 0, len(axes))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	log.Info().Int("requested", len(axes)).Int("produced", len(out)).Str("provider", p.gen.Name()).Msg("variation run finished")
	return out, nil
}

// loggerFor prefers the request logger carried by ctx so entries keep the
// request id.
func (p *Pipeline) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		scoped := l.With().Str("component", "variation").Logger()
		return &scoped
	}
	return &p.logger
}
