package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/session"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// Session is the player-facing entry point; *session.Controller satisfies it.
type Session interface {
	Handle(ctx context.Context, transcript []chat.Line, input string) ([]chat.Line, session.Status, error)
	Status() session.Status
}

// ChatHandler handles chat requests
type ChatHandler struct {
	session Session
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(s Session, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		session: s,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Only allow POST method
	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid chat request", "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transcript, status, err := h.session.Handle(r.Context(), request.Transcript, request.Message)
	if err != nil {
		h.logger.Error("Error handling chat message", "error", err)
		msg := "Failed to process message. Please try again."
		if errors.Is(err, state.ErrEmptyWorld) {
			msg = "No NPCs are available to talk to."
		}
		h.writeError(w, http.StatusInternalServerError, msg)
		return
	}

	response := chat.ChatResponse{
		Transcript: transcript,
		Status:     status.Map(),
		StatusText: status.String(),
	}
	if n := len(transcript); n > 0 && len(transcript) > len(request.Transcript) {
		response.Message = transcript[n-1].Text
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding chat response", "error", err)
	}
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(chat.ChatResponse{Error: msg}); err != nil {
		h.logger.Error("Error encoding error response", "error", err)
	}
}
