package handler

import (
	"net/http"
	"time"
)

// HealthView is the payload of GET /healthz. Atoms lists the keys of the
// atoms this server has cached.
type HealthView struct {
	Status string   `json:"status"`
	Time   string   `json:"time"`
	Atoms  []string `json:"atoms"`
}

// handleHealth handles GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthView{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Atoms:  h.Atoms(),
	})
}
