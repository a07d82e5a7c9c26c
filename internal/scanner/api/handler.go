package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
)

// Handler serves the source health endpoints.
type Handler struct {
	invoker *reliability.Invoker
	logger  logging.Logger
}

func NewHandler(invoker *reliability.Invoker, logger logging.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger,
	}
}

// GetStatus reports service liveness.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSourcesHealth returns the health snapshot for every tracked source.
func (h *Handler) GetSourcesHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := h.invoker.HealthSnapshot()
	h.writeJSON(w, http.StatusOK, snapshot)
}

// GetSourceHealth returns the health snapshot for a single source.
func (h *Handler) GetSourceHealth(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	snapshot := h.invoker.HealthSnapshot()
	health, ok := snapshot[name]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "unknown source: " + name,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, health)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Errorf("Failed to encode response: %v", err)
	}
}
