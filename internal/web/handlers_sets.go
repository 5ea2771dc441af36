package web

import (
	"net/http"
)

type successResponse struct {
	Success bool `json:"success"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required"`
}

// handleListSets lists every live set with the caller's progress on it.
func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	sets, err := s.service.ListSets(r.Context(), user.ID, parsePage(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"sets": sets})
}

func (s *Server) handleMarkOpened(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	setID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if err := s.service.MarkSetOpened(r.Context(), user.ID, setID); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, successResponse{Success: true})
}

// handleRenameSet renames a set the caller owns.
func (s *Server) handleRenameSet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	setID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	if err := s.service.RenameSet(r.Context(), user.ID, setID, req.Name); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, successResponse{Success: true})
}

// handleDeleteSet soft-deletes a set the caller owns.
func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	setID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if err := s.service.DeleteSet(r.Context(), user.ID, setID); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, successResponse{Success: true})
}

func (s *Server) handleSetQuestions(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	setID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	content, err := s.service.SetQuestions(r.Context(), user.ID, setID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, content)
}
