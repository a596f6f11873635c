package server

import (
	"net/http"
	"time"

	"github.com/taxlens/invoice-analyzer/internal/httpx"
	"github.com/taxlens/invoice-analyzer/internal/repository"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also pings the database.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := repository.HealthCheck(r.Context(), s.db, 3*time.Second); err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unreachable", err.Error())
			return
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
