package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relblock/relblock/internal/server"
	"github.com/relblock/relblock/pkg/store"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram editor HTTP API",
		Long: `Serve the diagram editor HTTP API.

The server exposes graph snapshots, layouts, organize previews, and all
editing operations over JSON. It shares the configured store and cache
with the other commands, so edits made over HTTP are visible to the CLI
and vice versa.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			l, err := c.newLog(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = l.Close(ctx) }()

			editor := store.NewEditor(l, store.WithActor(c.mustConfig().Actor))
			runner, err := c.newRunner(ctx, editor, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			if addr == "" {
				addr = c.mustConfig().Server.Addr
			}
			return server.New(editor, runner, c.Logger).ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	return cmd
}
