package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-hub/internal/home"
)

// roomMappingsBody is the request and response body of the mappings routes.
type roomMappingsBody struct {
	Room    string        `json:"room,omitempty"`
	Targets []home.Target `json:"targets"`
}

// handleGetRoomMappings lists the stored backend rooms of a bare room id.
func (s *Server) handleGetRoomMappings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := s.mappingRoom(w, r)
	if !ok {
		return
	}
	s.writeMappings(w, r, roomID)
}

// handlePutRoomMappings adds targets to a bare room id and returns the
// full set. Pairs already stored are kept.
func (s *Server) handlePutRoomMappings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := s.mappingRoom(w, r)
	if !ok {
		return
	}

	var body roomMappingsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(body.Targets) == 0 {
		writeBadRequest(w, "targets must not be empty")
		return
	}
	for _, t := range body.Targets {
		if t.Plugin == "" || t.LocalID == "" {
			writeBadRequest(w, "each target needs plugin and localId")
			return
		}
	}

	if err := s.rooms.Put(r.Context(), roomID, body.Targets...); err != nil {
		s.logger.Error("storing room mappings failed", "room", roomID, "error", err)
		writeInternalError(w, "storing room mappings failed")
		return
	}
	s.writeMappings(w, r, roomID)
}

// handleDeleteRoomMappings removes every stored target of a bare room id.
func (s *Server) handleDeleteRoomMappings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := s.mappingRoom(w, r)
	if !ok {
		return
	}
	if err := s.rooms.Delete(r.Context(), roomID); err != nil {
		s.logger.Error("deleting room mappings failed", "room", roomID, "error", err)
		writeInternalError(w, "deleting room mappings failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mappingRoom checks that a mapper is configured and that the path names a
// bare room id. It writes the error response itself.
func (s *Server) mappingRoom(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.rooms == nil {
		writeError(w, http.StatusNotImplemented, ErrCodeUnsupported, "room mappings are not configured")
		return "", false
	}
	_, local, prefixed, err := home.ParseFlatID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return "", false
	}
	if prefixed {
		writeBadRequest(w, "room mappings take a bare room id")
		return "", false
	}
	return local, true
}

func (s *Server) writeMappings(w http.ResponseWriter, r *http.Request, roomID string) {
	targets, err := s.rooms.Lookup(r.Context(), roomID)
	if err != nil {
		s.logger.Error("reading room mappings failed", "room", roomID, "error", err)
		writeInternalError(w, "reading room mappings failed")
		return
	}
	if targets == nil {
		targets = []home.Target{}
	}
	writeJSON(w, http.StatusOK, roomMappingsBody{Room: roomID, Targets: targets})
}
