package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-interview-service/health"
	"github.com/EasterCompany/dex-interview-service/system"
)

const checkTimeout = 2 * time.Second

// HealthHandler returns simple health check (for load balancers)
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusHandler returns detailed service status
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := health.Run(r.Context(), s.Checks, checkTimeout)
	state := "operational"
	if !health.Healthy(checks) {
		state = "degraded"
	}

	status := map[string]interface{}{
		"service":   "dex-interview-service",
		"status":    state,
		"version":   s.Version,
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
		"sessions":  s.Sessions.Len(),
		"checks":    checks,
	}
	if stats, err := system.Collect(r.Context()); err != nil {
		s.Logger.Warn().Err(err).Msg("could not collect host stats")
	} else {
		status["host"] = stats
	}

	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn().Err(err).Msg("could not encode response")
	}
}
