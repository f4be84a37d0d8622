package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type StatusResponse struct {
	Status     map[string]int `json:"status"`
	StatusText string         `json:"status_text"`
}

// StatusHandler reports player HP and NPC affection.
type StatusHandler struct {
	session Session
	logger  *slog.Logger
}

func NewStatusHandler(s Session, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		session: s,
		logger:  logger,
	}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := h.session.Status()
	response := StatusResponse{
		Status:     status.Map(),
		StatusText: status.String(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding status response", "error", err)
	}
}
