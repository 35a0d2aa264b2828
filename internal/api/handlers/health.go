package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/valuescreen/pkg/database"
)

// DBChecker reports database health
type DBChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler serves /health
type HealthHandler struct {
	db      DBChecker // nil when the database is disabled
	service string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db DBChecker) *HealthHandler {
	return &HealthHandler{db: db, service: "valuescreen-api"}
}

// HealthResponse is the JSON body of GET /health
type HealthResponse struct {
	Status   string                 `json:"status"`
	Service  string                 `json:"service"`
	Database *database.HealthStatus `json:"database,omitempty"`
}

// Get returns 200 when the server (and its database, if any) is reachable
// GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Service: h.service}

	if h.db == nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, err := h.db.HealthCheck(ctx)
	resp.Database = status
	if err != nil {
		resp.Status = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
