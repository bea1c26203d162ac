package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/relblock/relblock/pkg/errors"
	"github.com/relblock/relblock/pkg/graph"
)

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Warn("request rejected", "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

// statusFor maps store, graph, and validation errors onto HTTP codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound,
		errors.ErrCodeDiagramNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeStore, errors.ErrCodeInternal:
		return http.StatusInternalServerError
	case "":
		if stderrors.Is(err, graph.ErrUnknownNode) {
			return http.StatusNotFound
		}
	}
	return http.StatusBadRequest
}
