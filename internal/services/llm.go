package services

import (
	"context"

	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// LLMService defines the interface for interacting with the completion API
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat returns the model's reply to an ordered list of role-tagged messages
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
