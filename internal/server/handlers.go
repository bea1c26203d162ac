package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/relblock/relblock/pkg/buildinfo"
	"github.com/relblock/relblock/pkg/errors"
	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/organize"
	"github.com/relblock/relblock/pkg/pipeline"
	"github.com/relblock/relblock/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.editor.Diagrams(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"diagrams": ids})
}

// =============================================================================
// Read Endpoints
// =============================================================================

type graphResponse struct {
	Version int        `json:"version"`
	Graph   graph.Data `json:"graph"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	g, version, err := s.editor.Load(r.Context(), diagramID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, graphResponse{Version: version, Graph: g.ToData()})
}

// handleLayout serves the rendered diagram. The collapsed gate set comes
// from repeated or comma-separated "collapsed" query params; "format"
// picks the artifact (json by default).
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported format %q", format))
		return
	}

	opts := pipeline.Options{
		DiagramID: diagramID,
		Collapsed: splitMulti(q["collapsed"]),
		Formats:   []string{format},
		ShowAreas: q.Get("areas") == "true",
		Detailed:  q.Get("detailed") == "true",
		Logger:    s.logger,
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("X-Diagram-Version", strconv.Itoa(result.Version))
	_, _ = w.Write(result.Artifacts[format])
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/json"
}

// splitMulti flattens repeated query params and comma-separated values.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// =============================================================================
// Organize Preview
// =============================================================================

type organizeRequest struct {
	NodeID    string         `json:"node_id"`
	GateKind  graph.GateType `json:"gate_kind,omitempty"`
	Collapsed []string       `json:"collapsed,omitempty"`
}

type organizeResponse struct {
	Active        bool            `json:"active"`
	GateID        string          `json:"gate_id,omitempty"`
	PlaceholderID string          `json:"placeholder_id,omitempty"`
	VirtualGate   bool            `json:"virtual_gate,omitempty"`
	Axis          organize.Axis   `json:"axis,omitempty"`
	Order         []string        `json:"order,omitempty"`
	Layout        json.RawMessage `json:"layout,omitempty"`
}

// handleOrganize derives the organization overlay for a selection and
// returns its layout, without mutating the stored diagram.
func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")

	var req organizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	opts := pipeline.Options{DiagramID: diagramID, Collapsed: req.Collapsed, Logger: s.logger}
	g, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	collapsed := make(map[string]bool, len(req.Collapsed))
	for _, id := range req.Collapsed {
		collapsed[id] = true
	}

	ov := organize.Build(g, &organize.Selection{NodeID: req.NodeID, GateKind: req.GateKind}, collapsed)
	resp := organizeResponse{Active: ov.Active()}
	if !ov.Active() {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	res, err := pipeline.ComputeLayout(r.Context(), ov.Graph, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layoutJSON, err := json.Marshal(res)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout"))
		return
	}

	gate, _ := ov.Graph.Node(ov.GateID)
	resp.GateID = ov.GateID
	resp.PlaceholderID = ov.PlaceholderID
	resp.VirtualGate = ov.VirtualGate
	resp.Axis = organize.AxisFor(gate.Subtype)
	resp.Order = ov.Graph.Children(ov.GateID)
	resp.Layout = layoutJSON
	s.writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Mutation Endpoints
// =============================================================================

type versionResponse struct {
	Version int    `json:"version"`
	GateID  string `json:"gate_id,omitempty"`
}

func (s *Server) respondVersion(w http.ResponseWriter, r *http.Request, diagramID string, status int, gateID string) {
	version, err := s.editor.Head(r.Context(), diagramID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, status, versionResponse{Version: version, GateID: gateID})
}

type addRootRequest struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

func (s *Server) handleAddRoot(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")

	var req addRootRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := s.editor.AddRootComponent(r.Context(), diagramID, req.ID, req.Label); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusCreated, "")
}

type insertRequest struct {
	TargetID string         `json:"target_id"`
	NewID    string         `json:"new_id"`
	Relation graph.Relation `json:"relation"`
	K        int            `json:"k,omitempty"`
	Position *int           `json:"position,omitempty"` // 1-based; omitted appends after target
}

// handleInsert commits the insertion an organize session previews: a new
// component under an existing or to-be-created gate.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")

	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	position := -1
	if req.Position != nil {
		position = *req.Position - 1
	}
	gateID, err := s.editor.AddComponent(r.Context(), diagramID, store.AddComponentPayload{
		TargetID: req.TargetID,
		NewID:    req.NewID,
		Relation: req.Relation,
		K:        req.K,
		Position: position,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusCreated, gateID)
}

type reorderRequest struct {
	GateID string   `json:"gate_id"`
	Order  []string `json:"order"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := s.editor.ReorderChildren(r.Context(), diagramID, req.GateID, req.Order); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusOK, "")
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	if err := s.editor.Undo(r.Context(), diagramID); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusOK, "")
}

type editComponentRequest struct {
	NewID       string   `json:"new_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Label       string   `json:"label,omitempty"`
	Color       string   `json:"color,omitempty"`
	UnitType    string   `json:"unit_type,omitempty"`
	DistKind    string   `json:"dist_kind,omitempty"`
	Reliability *float64 `json:"reliability,omitempty"`
}

func (s *Server) handleEditComponent(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	nodeID := chi.URLParam(r, "nodeID")

	var req editComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	err := s.editor.EditComponent(r.Context(), diagramID, store.EditComponentPayload{
		ID:          nodeID,
		NewID:       req.NewID,
		Name:        req.Name,
		Label:       req.Label,
		Color:       req.Color,
		UnitType:    req.UnitType,
		DistKind:    req.DistKind,
		Reliability: req.Reliability,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusOK, "")
}

type editGateRequest struct {
	Subtype graph.GateType `json:"subtype"`
	K       int            `json:"k,omitempty"`
}

func (s *Server) handleEditGate(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	nodeID := chi.URLParam(r, "nodeID")

	var req editGateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	err := s.editor.EditGate(r.Context(), diagramID, store.EditGatePayload{
		ID:      nodeID,
		Subtype: req.Subtype,
		K:       req.K,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusOK, "")
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	nodeID := chi.URLParam(r, "nodeID")

	if err := s.editor.RemoveNode(r.Context(), diagramID, nodeID); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondVersion(w, r, diagramID, http.StatusOK, "")
}
