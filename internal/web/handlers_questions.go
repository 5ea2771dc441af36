package web

import (
	"net/http"

	"github.com/JonMunkholm/quizdeck/internal/core"
)

// progressRequest is the body of a progress update. Attempted defaults to
// true; a missing correct is stored as NULL.
type progressRequest struct {
	Attempted *bool `json:"attempted"`
	Correct   *bool `json:"correct"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	questionID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req progressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	attempted := true
	if req.Attempted != nil {
		attempted = *req.Attempted
	}

	progress, err := s.service.RecordProgress(r.Context(), user.ID, questionID, attempted, req.Correct)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"success": true, "progress": progress})
}

// handleMarkMissed adds a question to the review list. missed is null when
// it was already there.
func (s *Server) handleMarkMissed(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	questionID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	mark, err := s.service.MarkMissed(r.Context(), user.ID, questionID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"success": true, "missed": mark})
}

func (s *Server) handleUnmarkMissed(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	questionID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if err := s.service.UnmarkMissed(r.Context(), user.ID, questionID); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, successResponse{Success: true})
}

func (s *Server) handleBookmark(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	questionID, err := parseID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	res, err := s.service.ToggleBookmark(r.Context(), user.ID, questionID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{
		"success":       true,
		"action":        res.Action,
		"is_bookmarked": res.IsBookmarked,
	})
}

// handleMixedQuestions returns random questions across all live sets.
//
// Query: filter (all, unattempted, missed, bookmarks), limit, offset.
func (s *Server) handleMixedQuestions(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	filter := core.ParseMixedFilter(r.URL.Query().Get("filter"))
	questions, err := s.service.MixedQuestions(r.Context(), user.ID, filter, parsePage(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{
		"questions":   questions,
		"filter_type": filter,
		"total":       len(questions),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	stats, err := s.service.Stats(r.Context(), user.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, stats)
}

func (s *Server) handleMissedQuestions(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	questions, err := s.service.MissedQuestions(r.Context(), user.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"missed_questions": questions})
}
