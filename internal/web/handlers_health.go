package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/core"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	WarmingUp bool                     `json:"warming_up"`
	Uploads   core.UploadLimiterStatus `json:"uploads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		WarmingUp: s.warmingUp(),
		Uploads:   s.service.LimiterStatus(),
	})
}
