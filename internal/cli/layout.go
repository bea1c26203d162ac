package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relblock/relblock/pkg/pipeline"
	"github.com/relblock/relblock/pkg/store"
)

// layoutCommand creates the layout command for computing diagram geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		collapsed []string
	)

	cmd := &cobra.Command{
		Use:   "layout <diagram>",
		Short: "Compute a diagram's layout geometry",
		Long: `Compute a diagram's layout geometry.

The layout command replays the diagram from the event store, computes node
boxes, rail lines, and gate areas, and writes the geometry as JSON. Pass
--collapsed to fold gate subtrees into single boxes.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, collapsed, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <diagram>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringSliceVar(&collapsed, "collapsed", nil, "gate IDs to collapse")

	return cmd
}

// runLayout replays the diagram, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, diagramID, output string, collapsed []string, noCache bool) error {
	return c.withRunner(ctx, noCache, func(ctx context.Context, runner *pipeline.Runner) error {
		opts := pipeline.Options{
			DiagramID: diagramID,
			Collapsed: collapsed,
			Formats:   []string{pipeline.FormatJSON},
			Logger:    c.Logger,
		}

		spinner := newSpinnerWithContext(ctx, "Computing layout...")
		spinner.Start()

		result, err := runner.Execute(ctx, opts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
		spinner.Stop()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		outputPath := output
		if outputPath == "" {
			outputPath = diagramID + ".layout.json"
		}
		if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}

		printSuccess("Layout complete")
		printFile(outputPath)
		printStats(result.Stats.NodeCount, result.Version, result.CacheInfo.LayoutHit)
		printNewline()
		printNextStep("Render", "relblock render "+diagramID)
		return nil
	})
}

// withRunner opens the configured cache and editor, runs fn with a
// pipeline runner, and releases both.
func (c *CLI) withRunner(ctx context.Context, noCache bool, fn func(context.Context, *pipeline.Runner) error) error {
	l, err := c.newLog(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = l.Close(ctx) }()

	editor := store.NewEditor(l, store.WithActor(c.mustConfig().Actor))
	runner, err := c.newRunner(ctx, editor, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	return fn(ctx, runner)
}
