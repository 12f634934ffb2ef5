package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Dan9191/etl-pipeline/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Status returns the summary of the most recent pipeline run
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	summary := h.svc.LastRun()
	if summary == nil {
		json.NewEncoder(w).Encode(map[string]string{"status": "no runs yet"})
		return
	}
	json.NewEncoder(w).Encode(summary)
}

// TriggerRun starts a pipeline run and returns its summary
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Run(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(summary)
}
