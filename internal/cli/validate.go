package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/store"
)

// validateCommand creates the validate command checking diagram
// structure.
func (c *CLI) validateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [diagram]",
		Short: "Validate a diagram's structure",
		Long: `Validate a diagram's structure.

Checks the single-root tree shape, edge endpoints, gate arity, and KOON
thresholds. By default the diagram is replayed from the event store;
pass --file to validate a serialized graph JSON instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return validateFile(file)
			}
			if len(args) != 1 {
				return fmt.Errorf("need a diagram name or --file")
			}
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				g, version, err := e.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if err := g.Validate(); err != nil {
					return fmt.Errorf("diagram %s: %w", args[0], err)
				}
				printSuccess("%s is valid", args[0])
				printStats(g.NodeCount(), version, false)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "validate a graph JSON file instead of a stored diagram")
	return cmd
}

func validateFile(path string) error {
	g, err := graph.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	printSuccess("%s is valid", path)
	printStats(g.NodeCount(), 0, false)
	return nil
}
