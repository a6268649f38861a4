package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-hub/internal/device"
	"github.com/nerrad567/gray-logic-hub/internal/home"
	"github.com/nerrad567/gray-logic-hub/internal/plugin"
)

// handleGetHome returns the merged home of every connected plugin.
func (s *Server) handleGetHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.home.GetHome(r.Context()))
}

// handleGetDashboard returns the lighting dashboard.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Compose(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleListPlugins returns the connection status of every plugin.
func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"plugins": s.home.Statuses(r.Context()),
	})
}

// handleConnectPlugin forwards credentials to a plugin. An empty body
// reconnects with stored credentials. A refused login is still 200; the
// result says why.
func (s *Server) handleConnectPlugin(w http.ResponseWriter, r *http.Request) {
	var creds plugin.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	res, err := s.home.Connect(r.Context(), chi.URLParam(r, "id"), creds)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDisconnectPlugin ends a plugin session. With ?forget=true the stored
// credentials are cleared too.
func (s *Server) handleDisconnectPlugin(w http.ResponseWriter, r *http.Request) {
	forget := isTrue(r.URL.Query().Get("forget"))
	if err := s.home.Disconnect(r.Context(), chi.URLParam(r, "id"), forget); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDeviceState(w http.ResponseWriter, r *http.Request) {
	state, ok := decodeState(w, r)
	if !ok {
		return
	}
	res, err := s.home.UpdateDevice(r.Context(), chi.URLParam(r, "id"), state)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleSetRoomState(w http.ResponseWriter, r *http.Request) {
	state, ok := decodeState(w, r)
	if !ok {
		return
	}
	res, err := s.home.UpdateRoomDevices(r.Context(), chi.URLParam(r, "id"), state)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleSetZoneState(w http.ResponseWriter, r *http.Request) {
	state, ok := decodeState(w, r)
	if !ok {
		return
	}
	res, err := s.home.UpdateZoneDevices(r.Context(), chi.URLParam(r, "id"), state)
	s.writeResult(w, r, res, err)
}

func (s *Server) handleActivateScene(w http.ResponseWriter, r *http.Request) {
	res, err := s.home.ActivateScene(r.Context(), chi.URLParam(r, "id"))
	s.writeResult(w, r, res, err)
}

// decodeState reads a non-empty state object from the request body.
func decodeState(w http.ResponseWriter, r *http.Request) (device.State, bool) {
	var state device.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return nil, false
	}
	if len(state) == 0 {
		writeBadRequest(w, "state must not be empty")
		return nil, false
	}
	return state, true
}

// writeResult writes a mutation outcome. Routing failures map through
// writeServiceError; a backend failure returns 502 with the partial result
// so clients can see how many devices were updated.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res plugin.Result, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	var rerr *home.RoutingError
	if errors.As(err, &rerr) || errors.Is(err, device.ErrInvalidState) {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Warn("backend mutation failed",
		"path", r.URL.Path,
		"error", err,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	res.Success = false
	res.Message = err.Error()
	writeJSON(w, http.StatusBadGateway, res)
}
