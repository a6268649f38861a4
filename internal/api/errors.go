package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-hub/internal/dashboard"
	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeUnsupported = "unsupported"
	ErrCodeUnavailable = "unavailable"
	ErrCodeInternal    = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps aggregation and dashboard errors to responses.
//
//	ErrInvalidID, device.ErrInvalidState  400
//	ErrUnknownPlugin, ErrUnresolvedID  404
//	ErrUnsupported                     501
//	ErrPrimaryUnavailable              503
//	anything else                      502
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, home.ErrInvalidID), errors.Is(err, device.ErrInvalidState):
		writeBadRequest(w, err.Error())
	case errors.Is(err, home.ErrUnknownPlugin), errors.Is(err, home.ErrUnresolvedID):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, home.ErrUnsupported), errors.Is(err, plugin.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, ErrCodeUnsupported, err.Error())
	case errors.Is(err, dashboard.ErrPrimaryUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		s.logger.Warn("backend request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeError(w, http.StatusBadGateway, ErrCodeUnavailable, err.Error())
	}
}
