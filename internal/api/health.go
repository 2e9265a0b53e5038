package api

import "net/http"

// healthMessage is the fixed liveness payload. It reports process liveness
// only; a degraded process with no index still answers healthy.
const healthMessage = "Backend is running."

type healthResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Message: healthMessage}, s.logger)
}
