package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tablelayout/pkg/observability"
	"github.com/matzehuels/tablelayout/pkg/render/layout"
	"github.com/matzehuels/tablelayout/pkg/render/sink"
)

// Render generates output artifacts in the requested formats. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	start := time.Now()
	observability.Impose().OnRenderStart(ctx, opts.Formats)

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := RenderFormat(gctx, l, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	observability.Impose().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat renders a single format.
func RenderFormat(ctx context.Context, l layout.Layout, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, buildSVGOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(l, buildPNGOptions(opts)...)
	case FormatJSON:
		var jsonOpts []sink.JSONOption
		if opts.Slots {
			jsonOpts = append(jsonOpts, sink.WithJSONSlots())
		}
		return sink.RenderJSON(l, jsonOpts...)
	case FormatDOT:
		return []byte(sink.ToDOT(l)), nil
	case FormatGraphviz:
		return sink.RenderDOT(ctx, sink.ToDOT(l))
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Slots {
		svgOpts = append(svgOpts, sink.WithSlots())
	}
	if opts.Grid {
		svgOpts = append(svgOpts, sink.WithGrid())
	}
	if opts.NoLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	return svgOpts
}

// buildPNGOptions builds PNG rendering options.
func buildPNGOptions(opts Options) []sink.PNGOption {
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	pngOpts := []sink.PNGOption{sink.WithScale(scale)}
	if opts.Slots {
		pngOpts = append(pngOpts, sink.WithPNGSlots())
	}
	if opts.NoLabels {
		pngOpts = append(pngOpts, sink.WithoutPNGLabels())
	}
	return pngOpts
}
