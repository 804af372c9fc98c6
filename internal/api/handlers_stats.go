package api

import (
	"net/http"
	"time"
)

var started = time.Now()

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int64(time.Since(started).Seconds()),
		"processor":      s.proc.Stats(),
	})
}
