package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/store"
)

// withEditor opens the configured log, runs fn with an editor on it, and
// closes the log again.
func (c *CLI) withEditor(ctx context.Context, fn func(context.Context, *store.Editor) error) error {
	l, err := c.newLog(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = l.Close(ctx) }()

	return fn(ctx, store.NewEditor(l, store.WithActor(c.mustConfig().Actor)))
}

// reportVersion prints the diagram's head after a successful mutation.
func reportVersion(ctx context.Context, e *store.Editor, diagramID, msg string) error {
	version, err := e.Head(ctx, diagramID)
	if err != nil {
		return err
	}
	printSuccess("%s", msg)
	printStats(0, version, false)
	return nil
}

// =============================================================================
// Diagram Commands
// =============================================================================

// listCommand creates the list command showing all diagrams in the store.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all diagrams in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				ids, err := e.Diagrams(ctx)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					printInfo("No diagrams yet")
					printNewline()
					printNextStep("Create one", "relblock new <diagram> <component>")
					return nil
				}
				for _, id := range ids {
					version, err := e.Head(ctx, id)
					if err != nil {
						return err
					}
					printKeyValue(id, fmt.Sprintf("v%d", version))
				}
				return nil
			})
		},
	}
}

// newCommand creates the new command seeding a diagram with its root
// component.
func (c *CLI) newCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "new <diagram> <component-id>",
		Short: "Create a diagram with its first component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				if err := e.AddRootComponent(ctx, args[0], args[1], label); err != nil {
					return err
				}
				if err := reportVersion(ctx, e, args[0], fmt.Sprintf("Created %s with root %s", args[0], args[1])); err != nil {
					return err
				}
				printNewline()
				printNextStep("Add components", fmt.Sprintf("relblock insert %s %s <new-id> --relation parallel", args[0], args[1]))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "display label for the root component")
	return cmd
}

// insertCommand creates the insert command attaching a component relative
// to an existing node.
func (c *CLI) insertCommand() *cobra.Command {
	var (
		relation string
		k        int
		position int
	)

	cmd := &cobra.Command{
		Use:   "insert <diagram> <target-id> <new-id>",
		Short: "Insert a component in series, parallel, or k-out-of-n with a target",
		Long: `Insert a component relative to an existing node.

Inserting relative to a component interposes a gate of the matching kind
(series: AND, parallel: OR, koon: K-out-of-N) and hangs both components
under it. Inserting relative to a gate of the matching kind joins the new
component as a sibling instead.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				gateID, err := e.AddComponent(ctx, args[0], store.AddComponentPayload{
					TargetID: args[1],
					NewID:    args[2],
					Relation: graph.Relation(relation),
					K:        k,
					Position: position,
				})
				if err != nil {
					return err
				}
				return reportVersion(ctx, e, args[0], fmt.Sprintf("Inserted %s under %s", args[2], gateID))
			})
		},
	}

	cmd.Flags().StringVarP(&relation, "relation", "r", "parallel", "relation to target: series, parallel, koon")
	cmd.Flags().IntVar(&k, "k", 0, "threshold for koon relation")
	cmd.Flags().IntVar(&position, "position", -1, "child slot under the gate (-1: after target)")
	return cmd
}

// reorderCommand creates the reorder command permuting a gate's children.
func (c *CLI) reorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <diagram> <gate-id> <child>...",
		Short: "Reorder a gate's children",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				if err := e.ReorderChildren(ctx, args[0], args[1], args[2:]); err != nil {
					return err
				}
				return reportVersion(ctx, e, args[0], fmt.Sprintf("Reordered %s: %s", args[1], strings.Join(args[2:], ", ")))
			})
		},
	}
}

// editCommand creates the edit command updating a component's attributes.
func (c *CLI) editCommand() *cobra.Command {
	var (
		newID       string
		name        string
		label       string
		color       string
		unitType    string
		distKind    string
		reliability float64
	)

	cmd := &cobra.Command{
		Use:   "edit <diagram> <component-id>",
		Short: "Rename a component or update its display attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := store.EditComponentPayload{
				ID:       args[1],
				NewID:    newID,
				Name:     name,
				Label:    label,
				Color:    color,
				UnitType: unitType,
				DistKind: distKind,
			}
			if cmd.Flags().Changed("reliability") {
				payload.Reliability = &reliability
			}
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				if err := e.EditComponent(ctx, args[0], payload); err != nil {
					return err
				}
				return reportVersion(ctx, e, args[0], fmt.Sprintf("Updated %s", args[1]))
			})
		},
	}

	cmd.Flags().StringVar(&newID, "rename", "", "new component ID")
	cmd.Flags().StringVar(&name, "name", "", "component name")
	cmd.Flags().StringVar(&label, "label", "", "display label")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	cmd.Flags().StringVar(&unitType, "unit-type", "", "unit type")
	cmd.Flags().StringVar(&distKind, "dist-kind", "", "failure distribution kind")
	cmd.Flags().Float64Var(&reliability, "reliability", 0, "reliability value")
	return cmd
}

// gateCommand creates the gate command changing a gate's logic.
func (c *CLI) gateCommand() *cobra.Command {
	var (
		gateType string
		k        int
	)

	cmd := &cobra.Command{
		Use:   "gate <diagram> <gate-id>",
		Short: "Change a gate's type or K threshold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				err := e.EditGate(ctx, args[0], store.EditGatePayload{
					ID:      args[1],
					Subtype: graph.GateType(gateType),
					K:       k,
				})
				if err != nil {
					return err
				}
				return reportVersion(ctx, e, args[0], fmt.Sprintf("Changed %s to %s", args[1], gateType))
			})
		},
	}

	cmd.Flags().StringVarP(&gateType, "type", "t", "", "gate type: AND, OR, KOON")
	cmd.Flags().IntVar(&k, "k", 0, "threshold for KOON gates")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// removeCommand creates the remove command deleting a node.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <diagram> <node-id>",
		Short: "Remove a component or an empty gate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				if err := e.RemoveNode(ctx, args[0], args[1]); err != nil {
					return err
				}
				return reportVersion(ctx, e, args[0], fmt.Sprintf("Removed %s", args[1]))
			})
		},
	}
}

// undoCommand creates the undo command rewinding the last edit.
func (c *CLI) undoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <diagram>",
		Short: "Undo the last edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				if err := e.Undo(ctx, args[0]); err != nil {
					return err
				}
				return reportVersion(ctx, e, args[0], "Undid last edit")
			})
		},
	}
}

// historyCommand creates the history command listing a diagram's events.
func (c *CLI) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <diagram>",
		Short: "Show a diagram's event history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.newLog(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = l.Close(ctx) }()

			events, err := l.Events(ctx, args[0])
			if err != nil {
				return err
			}
			if len(events) == 0 {
				printInfo("No events for %s", args[0])
				return nil
			}
			for _, ev := range events {
				line := fmt.Sprintf("%s  %s", ev.Time.Format("2006-01-02 15:04:05"), describeEvent(ev))
				if ev.Actor != "" {
					line += StyleDim.Render("  by " + ev.Actor)
				}
				printKeyValue(fmt.Sprintf("v%d", ev.Version), line)
			}
			return nil
		},
	}
}

// describeEvent renders one event as a human-readable summary.
func describeEvent(ev store.Event) string {
	switch ev.Kind {
	case store.KindSnapshot:
		if ev.Snapshot != nil {
			return fmt.Sprintf("snapshot (%d nodes)", len(ev.Snapshot.Nodes))
		}
		return "snapshot"
	case store.KindAddRootComponent:
		if ev.AddRoot != nil {
			return "add root " + ev.AddRoot.ID
		}
	case store.KindAddComponent:
		if ev.Add != nil {
			return fmt.Sprintf("add %s %s to %s", ev.Add.NewID, ev.Add.Relation, ev.Add.TargetID)
		}
	case store.KindRemoveNode:
		if ev.Remove != nil {
			return "remove " + ev.Remove.ID
		}
	case store.KindEditComponent:
		if ev.EditComp != nil {
			return "edit " + ev.EditComp.ID
		}
	case store.KindEditGate:
		if ev.EditGate != nil {
			return fmt.Sprintf("gate %s -> %s", ev.EditGate.ID, ev.EditGate.Subtype)
		}
	case store.KindReorderChildren:
		if ev.Reorder != nil {
			return "reorder " + ev.Reorder.GateID
		}
	case store.KindSetHead:
		if ev.Head != nil {
			return fmt.Sprintf("rewind to v%d", ev.Head.Version)
		}
	}
	return string(ev.Kind)
}
