package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/layout"
	"github.com/relblock/relblock/pkg/organize"
	"github.com/relblock/relblock/pkg/store"
)

// Tree styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeGateStyle     = lipgloss.NewStyle().Foreground(colorYellow)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	treePlaceholder   = lipgloss.NewStyle().Foreground(colorGreen).Italic(true)
)

// tuiCommand creates the tui command running the interactive explorer.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <diagram>",
		Short: "Explore and reorganize a diagram interactively",
		Long: `Explore and reorganize a diagram interactively.

Navigate the block tree, collapse gate subtrees, and enter organize mode
to insert a new component and reorder a gate's children. Organize mode
previews the placement live and only writes to the store on confirm.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ctx context.Context, e *store.Editor) error {
				g, version, err := e.Load(ctx, args[0])
				if err != nil {
					return err
				}
				model := newExplorerModel(ctx, e, args[0], g, version)
				_, err = tea.NewProgram(model).Run()
				return err
			})
		},
	}
}

// =============================================================================
// ExplorerModel - Interactive diagram explorer
// =============================================================================

// treeRow is one displayable line of the block tree.
type treeRow struct {
	ID    string
	Depth int
	Gate  bool
}

// explorerModel is the bubbletea model for the diagram explorer. It has
// two modes: browsing the tree, and organizing one gate's children with
// a live placeholder.
type explorerModel struct {
	ctx       context.Context
	editor    *store.Editor
	diagramID string

	g         *graph.Graph
	version   int
	rows      []treeRow
	cursor    int
	collapsed map[string]bool

	// Organize mode state. Active when overlay.Active().
	overlay   organize.Overlay
	session   *organize.Session
	geom      *layout.Result
	orgCursor int
	orgTarget string
	pickKind  bool

	status string
}

func newExplorerModel(ctx context.Context, e *store.Editor, diagramID string, g *graph.Graph, version int) *explorerModel {
	m := &explorerModel{
		ctx:       ctx,
		editor:    e,
		diagramID: diagramID,
		g:         g,
		version:   version,
		collapsed: make(map[string]bool),
		session:   organize.NewSession(),
	}
	m.rebuildRows()
	return m
}

func (m *explorerModel) Init() tea.Cmd {
	return nil
}

// rebuildRows flattens the tree in display order, skipping the children
// of collapsed gates.
func (m *explorerModel) rebuildRows() {
	m.rows = m.rows[:0]
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, ok := m.g.Node(id)
		if !ok {
			return
		}
		m.rows = append(m.rows, treeRow{ID: id, Depth: depth, Gate: n.IsGate()})
		if n.IsGate() && !m.collapsed[id] {
			for _, ch := range m.g.Children(id) {
				walk(ch, depth+1)
			}
		}
	}
	if root := m.g.Root(); root != "" {
		walk(root, 0)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.pickKind {
		return m.updatePickKind(key)
	}
	if m.overlay.Active() {
		return m.updateOrganize(key)
	}
	return m.updateBrowse(key)
}

// updateBrowse handles keys in tree-browsing mode.
func (m *explorerModel) updateBrowse(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case " ":
		if row := m.currentRow(); row != nil && row.Gate {
			m.collapsed[row.ID] = !m.collapsed[row.ID]
			m.rebuildRows()
		}
	case "a":
		m.startOrganize()
	case "d":
		if row := m.currentRow(); row != nil {
			m.mutate(func() error {
				return m.editor.RemoveNode(m.ctx, m.diagramID, row.ID)
			})
		}
	case "u":
		m.mutate(func() error {
			return m.editor.Undo(m.ctx, m.diagramID)
		})
	}
	return m, nil
}

// updatePickKind handles the gate-kind prompt shown when organizing a
// component target.
func (m *explorerModel) updatePickKind(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.pickKind = false
	var kind graph.GateType
	switch key.String() {
	case "s":
		kind = graph.GateAND
	case "p":
		kind = graph.GateOR
	case "n":
		kind = graph.GateKOON
	default:
		m.status = "cancelled"
		return m, nil
	}
	m.activateOverlay(organize.Build(m.g, &organize.Selection{NodeID: m.orgTarget, GateKind: kind}, m.collapsed))
	return m, nil
}

// updateOrganize handles keys while an organize overlay is active.
func (m *explorerModel) updateOrganize(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	order := m.session.Order()
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.cancelOrganize()
	case "up", "k":
		if m.orgCursor > 0 {
			m.orgCursor--
		}
	case "down", "j":
		if m.orgCursor < len(order)-1 {
			m.orgCursor++
		}
	case "K", "shift+up":
		m.moveChild(-1)
	case "J", "shift+down":
		m.moveChild(+1)
	case "enter":
		m.commitOrganize()
	}
	return m, nil
}

// startOrganize derives an overlay for the selected row. Gates organize
// directly; components first need a gate kind.
func (m *explorerModel) startOrganize() {
	row := m.currentRow()
	if row == nil {
		return
	}
	m.orgTarget = row.ID
	if row.Gate && !m.collapsed[row.ID] {
		m.activateOverlay(organize.Build(m.g, &organize.Selection{NodeID: row.ID}, m.collapsed))
		return
	}
	m.pickKind = true
	m.status = "gate kind? s: series  p: parallel  n: k-out-of-n"
}

func (m *explorerModel) activateOverlay(ov organize.Overlay) {
	if !ov.Active() {
		m.status = "cannot organize here"
		return
	}
	m.overlay = ov
	m.session.Reset()
	m.session.Activate(ov)
	m.geom = layout.Compute(ov.Graph, layout.WithCollapsed(m.collapsed))
	m.orgCursor = len(m.session.Order()) - 1
	m.status = ""
}

func (m *explorerModel) cancelOrganize() {
	m.overlay = organize.Overlay{}
	m.session.Reset()
	m.geom = nil
	m.status = "cancelled"
}

// moveChild shifts the selected child one slot by replaying the move as
// a drag sample past the neighbor's center.
func (m *explorerModel) moveChild(dir int) {
	order := m.session.Order()
	target := m.orgCursor + dir
	if target < 0 || target >= len(order) || m.geom == nil {
		return
	}

	id := order[m.orgCursor]
	p, ok := organize.ChildCenter(m.geom, order[target])
	if !ok || !m.session.StartDrag(id) {
		return
	}

	axis := organize.AxisFor(m.gateSubtype())
	if axis == organize.AxisHorizontal {
		p.X += float64(dir)
	} else {
		p.Y += float64(dir)
	}

	if m.session.Sample(p, m.geom) {
		_ = m.overlay.Graph.ReorderChildren(m.overlay.GateID, m.session.Order())
		m.geom = layout.Compute(m.overlay.Graph, layout.WithCollapsed(m.collapsed))
		m.orgCursor = target
	}
	m.session.EndDrag()
}

func (m *explorerModel) gateSubtype() graph.GateType {
	if n, ok := m.overlay.Graph.Node(m.overlay.GateID); ok {
		return n.Subtype
	}
	return graph.GateOR
}

// commitOrganize writes the previewed insert and reorder to the store.
func (m *explorerModel) commitOrganize() {
	realID := m.g.UniqueID("unit")
	payload := organize.BuildPayload(m.overlay, m.session, realID)

	position := -1
	if payload.Position != nil {
		position = *payload.Position - 1
	}

	rel, k := m.insertRelation()
	m.mutate(func() error {
		gateID, err := m.editor.AddComponent(m.ctx, m.diagramID, store.AddComponentPayload{
			TargetID: m.orgTarget,
			NewID:    realID,
			Relation: rel,
			K:        k,
			Position: position,
		})
		if err != nil {
			return err
		}
		if payload.Reorder == nil {
			return nil
		}
		order := make([]string, len(payload.Reorder))
		for i, cp := range payload.Reorder {
			order[i] = cp.ID
		}
		return m.editor.ReorderChildren(m.ctx, m.diagramID, gateID, order)
	})

	m.overlay = organize.Overlay{}
	m.session.Reset()
	m.geom = nil
}

// insertRelation maps the organize gate onto the relation the insert
// event expects.
func (m *explorerModel) insertRelation() (graph.Relation, int) {
	switch m.gateSubtype() {
	case graph.GateAND:
		return graph.RelSeries, 0
	case graph.GateKOON:
		n, _ := m.overlay.Graph.Node(m.overlay.GateID)
		k := 1
		if n != nil && n.K > 0 {
			k = n.K
		}
		return graph.RelKOON, k
	}
	return graph.RelParallel, 0
}

// mutate runs an edit and reloads the diagram on success.
func (m *explorerModel) mutate(fn func() error) {
	if err := fn(); err != nil {
		m.status = err.Error()
		return
	}
	g, version, err := m.editor.Load(m.ctx, m.diagramID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.g = g
	m.version = version
	m.status = ""
	m.rebuildRows()
}

func (m *explorerModel) currentRow() *treeRow {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

// =============================================================================
// View
// =============================================================================

func (m *explorerModel) View() string {
	if m.overlay.Active() {
		return m.viewOrganize()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s  v%d", m.diagramID, m.version)))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ␣ collapse  a add  d delete  u undo  q quit"))
	b.WriteString("\n\n")

	for i, row := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", row.Depth) + m.describeRow(row)

		switch {
		case i == m.cursor:
			b.WriteString(treeSelectedStyle.Render(line))
		case row.Gate:
			b.WriteString(treeGateStyle.Render(line))
		default:
			b.WriteString(treeNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.status))
	}
	return b.String()
}

func (m *explorerModel) describeRow(row treeRow) string {
	n, ok := m.g.Node(row.ID)
	if !ok {
		return row.ID
	}
	if !n.IsGate() {
		return n.DisplayLabel()
	}
	label := fmt.Sprintf("%s [%s]", row.ID, n.Subtype)
	if n.Subtype == graph.GateKOON {
		label = fmt.Sprintf("%s [%d/%d]", row.ID, n.K, len(m.g.Children(row.ID)))
	}
	if m.collapsed[row.ID] {
		label += fmt.Sprintf(" (+%d)", countSubtree(m.g, row.ID))
	}
	return label
}

func (m *explorerModel) viewOrganize() string {
	var b strings.Builder
	title := fmt.Sprintf("Organize %s", m.overlay.GateID)
	if m.overlay.VirtualGate {
		title += " (new gate)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ select  J/K move  ⏎ confirm  esc cancel"))
	b.WriteString("\n\n")

	for i, id := range m.session.Order() {
		cursor := "  "
		if i == m.orgCursor {
			cursor = "▸ "
		}
		label := id
		style := treeNormalStyle
		if id == m.overlay.PlaceholderID {
			label = id + " (new)"
			style = treePlaceholder
		}
		if i == m.orgCursor {
			style = treeSelectedStyle
		}
		b.WriteString(style.Render(cursor + label))
		b.WriteString("\n")
	}

	if m.geom != nil {
		b.WriteString("\n")
		b.WriteString(treeDimStyle.Render(fmt.Sprintf("canvas %.0f×%.0f", m.geom.Width, m.geom.Height)))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.status))
	}
	return b.String()
}

// countSubtree counts the nodes hidden under a collapsed gate.
func countSubtree(g *graph.Graph, gateID string) int {
	count := 0
	var walk func(id string)
	walk = func(id string) {
		for _, ch := range g.Children(id) {
			count++
			walk(ch)
		}
	}
	walk(gateID)
	return count
}
