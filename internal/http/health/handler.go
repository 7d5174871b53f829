package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service string
	version string
}

func NewHandler(service, version string) *Handler {
	return &Handler{service: service, version: version}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.check)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

func (h *Handler) check(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Service:   h.service,
		Version:   h.version,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
