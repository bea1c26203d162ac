// Package server exposes the diagram editor over HTTP.
//
// The API is JSON-first: graph snapshots, layout geometry, and organize
// previews are returned as JSON, while the layout endpoint can also
// serve SVG and DOT artifacts directly. All mutations go through the
// event store, so every change is validated by replay before it lands.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/relblock/relblock/pkg/pipeline"
	"github.com/relblock/relblock/pkg/store"
)

// Server wires the event store editor and the layout pipeline into an
// HTTP handler.
type Server struct {
	editor *store.Editor
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server. The runner's source must be the same editor, or
// layouts will not reflect mutations.
func New(editor *store.Editor, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{editor: editor, runner: runner, logger: logger}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/diagrams", s.handleListDiagrams)

	r.Route("/diagrams/{diagramID}", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/layout", s.handleLayout)
		r.Post("/organize", s.handleOrganize)

		r.Post("/root", s.handleAddRoot)
		r.Post("/insert", s.handleInsert)
		r.Post("/reorder", s.handleReorder)
		r.Post("/undo", s.handleUndo)
		r.Put("/components/{nodeID}", s.handleEditComponent)
		r.Put("/gates/{nodeID}", s.handleEditGate)
		r.Delete("/nodes/{nodeID}", s.handleRemoveNode)
	})

	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}
