package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relblock/relblock/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple formats)
	formats   []string // output formats: "svg", "json", "dot"
	collapsed []string // gate IDs to collapse
	areas     bool     // shade gate areas behind subtrees
	detailed  bool     // include K and reliability in DOT output
	title     string   // diagram title in the SVG
	noCache   bool     // bypass the artifact cache
	refresh   bool     // bypass the graph cache too
}

// renderCommand creates the render command generating diagram artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <diagram>",
		Short: "Render a diagram to SVG, DOT, or layout JSON",
		Long: `Render a diagram to one or more artifact formats.

SVG is the editor-faithful rendering: component boxes, parallel rails,
connectors, and optional shaded gate areas. DOT is a graphviz export of
the raw structure. JSON is the layout geometry.

Artifacts are cached by content, so re-rendering an unchanged diagram is
a cache hit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.collapsed, "collapsed", nil, "gate IDs to collapse")
	cmd.Flags().BoolVar(&opts.areas, "areas", false, "shade gate areas behind subtrees")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include K and reliability in DOT output")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached graphs and replay from the store")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, diagramID string, opts *renderOpts) error {
	return c.withRunner(ctx, opts.noCache, func(ctx context.Context, runner *pipeline.Runner) error {
		pipeOpts := pipeline.Options{
			DiagramID: diagramID,
			Refresh:   opts.refresh,
			Collapsed: opts.collapsed,
			Formats:   opts.formats,
			ShowAreas: opts.areas,
			Detailed:  opts.detailed,
			Title:     opts.title,
			Logger:    c.Logger,
		}

		prog := newProgress(c.Logger)
		result, err := runner.Execute(ctx, pipeOpts)
		if err != nil {
			return fmt.Errorf("render %s: %w", diagramID, err)
		}
		prog.done(fmt.Sprintf("Rendered %s", diagramID))

		if ctx.Err() != nil {
			return ctx.Err()
		}

		printSuccess("Rendered %s", diagramID)
		for _, format := range opts.formats {
			path := outputPath(opts.output, diagramID, format, len(opts.formats) > 1)
			if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", path, err)
			}
			printFile(path)
		}
		printStats(result.Stats.NodeCount, result.Version, result.CacheInfo.RenderHit)
		return nil
	})
}

// outputPath derives the file name for one artifact. With multiple
// formats the output flag acts as a base path and the format becomes the
// extension.
func outputPath(output, diagramID, format string, multi bool) string {
	ext := "." + format
	switch {
	case output == "":
		return diagramID + ext
	case multi:
		return output + ext
	default:
		return output
	}
}
