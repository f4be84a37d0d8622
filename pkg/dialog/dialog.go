// Package dialog produces NPC replies through an injected completion service.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 60 * time.Second

var (
	// ErrNotConfigured means no usable completion service is available,
	// e.g. the API key is missing.
	ErrNotConfigured = errors.New("completion service is not configured")

	errEmptyResponse = errors.New("empty completion response")
)

// Completer is the external completion collaborator.
type Completer interface {
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}

// CompletionError reports a failed completion for one NPC turn.
type CompletionError struct {
	NPC string
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion for %s failed: %v", e.NPC, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Orchestrator turns player input into an NPC reply and keeps the NPC's
// bounded history in step with successful exchanges.
type Orchestrator struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator. A zero timeout uses DefaultTimeout.
func NewOrchestrator(completer Completer, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

// BuildMessages assembles the completion context: persona first, then the
// remembered turns oldest first, then the new input.
func BuildMessages(npc *actor.NPC, input string) []chat.ChatMessage {
	turns := npc.History().Turns()
	messages := make([]chat.ChatMessage, 0, len(turns)+2)
	messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: npc.Persona()})
	for _, turn := range turns {
		role := chat.ChatRoleAgent
		if turn.Role == actor.RolePlayer {
			role = chat.ChatRoleUser
		}
		messages = append(messages, chat.ChatMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: input})
	return messages
}

// Reply asks the completion service for npc's answer to input. On success
// the exchange is appended to the NPC's history; on failure nothing changes
// and a *CompletionError is returned.
func (o *Orchestrator) Reply(ctx context.Context, npc *actor.NPC, input string) (string, error) {
	if o.completer == nil {
		return "", &CompletionError{NPC: npc.Name, Err: ErrNotConfigured}
	}

	messages := BuildMessages(npc, input)
	o.logger.Debug("Requesting npc reply", "npc", npc.Name, "message_count", len(messages))

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.completer.Chat(ctx, messages)
	if err != nil {
		o.logger.Error("Failed to get completion", "npc", npc.Name, "error", err)
		return "", &CompletionError{NPC: npc.Name, Err: err}
	}
	if resp == nil {
		return "", &CompletionError{NPC: npc.Name, Err: errEmptyResponse}
	}

	reply := strings.TrimSpace(resp.Message)
	npc.History().Append(actor.RolePlayer, input)
	npc.History().Append(actor.RoleNPC, reply)

	o.logger.Debug("NPC replied", "npc", npc.Name, "reply_length", len(reply))
	return reply, nil
}
