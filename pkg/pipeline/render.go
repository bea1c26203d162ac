package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/layout"
	"github.com/relblock/relblock/pkg/observability"
	"github.com/relblock/relblock/pkg/render"
)

// RenderFromLayout runs the render stage without caching, producing one
// artifact per requested format.
func RenderFromLayout(ctx context.Context, res *layout.Result, g *graph.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()

		data, err := renderFormat(res, g, format, opts)

		observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(res *layout.Result, g *graph.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(res, svgOptions(opts)...), nil
	case FormatJSON:
		return render.RenderJSON(res)
	case FormatDOT:
		if g == nil {
			return nil, fmt.Errorf("dot export needs the diagram graph")
		}
		return []byte(render.ToDOT(g, render.DOTOptions{Detailed: opts.Detailed})), nil
	}
	return nil, fmt.Errorf("invalid format: %q", format)
}

func svgOptions(opts Options) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.ShowAreas {
		svgOpts = append(svgOpts, render.WithAreas())
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.Title))
	}
	return svgOpts
}
