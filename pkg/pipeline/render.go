package pipeline

import (
	"context"

	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/trussfea/pkg/cache"
	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/render/deformed"
	"github.com/matzehuels/trussfea/pkg/render/nodelink"
)

// Render draws an analysed model. out.Result may be nil for a topology
// drawing, which then leaves members uncoloured; deformed plots require it.
// Artifacts are cached under the model hash and the options.
func (r *Runner) Render(ctx context.Context, out *Result, opts RenderOptions) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(out.ModelHash, cache.ArtifactKeyOpts{
		Kind:     opts.Kind,
		Format:   opts.Format,
		Detailed: opts.Detailed,
		Scale:    opts.Scale,
		Width:    opts.Width,
		Height:   opts.Height,
	})
	cacheable := out.ModelHash != "" && out.Result != nil
	if cacheable {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	data, err := renderArtifact(ctx, out, opts)
	if err != nil {
		return nil, false, err
	}
	if cacheable {
		_ = r.Cache.Set(ctx, key, data, r.ttl(cache.TTLResult))
	}
	return data, false, nil
}

func renderArtifact(ctx context.Context, out *Result, opts RenderOptions) ([]byte, error) {
	if opts.Kind == KindDeformed {
		return deformed.Plot(out.Model, out.Result, deformed.Options{
			Scale:  opts.Scale,
			Width:  vg.Length(opts.Width),
			Height: vg.Length(opts.Height),
			Format: opts.Format,
		})
	}

	dot := nodelink.ToDOT(out.Model, out.Result, nodelink.Options{Detailed: opts.Detailed})
	switch opts.Format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}
