package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/omarica/internal/store"
)

// StatsHandler handles the dashboard aggregation endpoint.
type StatsHandler struct {
	DB *sql.DB
}

// Get handles GET /api/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	stats, err := store.GetStats(r.Context(), h.DB, claims.UserID, time.Now())
	if err != nil {
		storeError(w, err, "failed to compute stats")
		return
	}

	jsonResponse(w, http.StatusOK, stats)
}
