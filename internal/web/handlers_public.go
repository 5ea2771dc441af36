package web

import "net/http"

// Guest routes read live sets without any per-user state.

func (s *Server) handlePublicSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.service.PublicSets(r.Context(), parsePage(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"sets": sets})
}

func (s *Server) handlePublicSetQuestions(w http.ResponseWriter, r *http.Request) {
	setID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	content, err := s.service.PublicSetQuestions(r.Context(), setID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, content)
}

func (s *Server) handlePublicMixed(w http.ResponseWriter, r *http.Request) {
	questions, err := s.service.PublicMixedQuestions(r.Context(), parsePage(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"questions": questions})
}
