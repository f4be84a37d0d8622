package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength caps a single player message accepted by the API.
const MaxMessageLength = 1000

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC
	ChatRoleSystem = "system"    // Persona
)

// ChatMessage represents a single role-tagged message sent to the
// completion service.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Speaker labels used in the displayed transcript.
const (
	SpeakerSystem = "System"
	SpeakerPlayer = "Player"
)

// Line is one displayed transcript row.
type Line struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Notice builds a system transcript line.
func Notice(format string, args ...any) Line {
	return Line{Speaker: SpeakerSystem, Text: fmt.Sprintf(format, args...)}
}

// IsNotice reports whether the line was spoken by the system.
func (l Line) IsNotice() bool {
	return l.Speaker == SpeakerSystem
}

func (l Line) String() string {
	if l.Speaker == "" {
		return l.Text
	}
	return l.Speaker + ": " + l.Text
}

// FormatTranscript renders lines one per row, separated by blank lines.
func FormatTranscript(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.String())
	}
	return strings.Join(parts, "\n\n")
}

// ChatRequest represents a player action sent to the npc-engine api.
// Transcript is the currently displayed history; it is returned extended.
type ChatRequest struct {
	Transcript []Line `json:"transcript,omitempty"`
	Message    string `json:"message"`
}

// ChatResponse is used both for completion results (Message) and for the
// api's reply to a player action.
type ChatResponse struct {
	Message    string         `json:"message,omitempty"`
	Transcript []Line         `json:"transcript,omitempty"`
	Status     map[string]int `json:"status,omitempty"`
	StatusText string         `json:"status_text,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func (cr *ChatRequest) Validate() error {
	if utf8.RuneCountInString(cr.Message) > MaxMessageLength {
		return fmt.Errorf("message exceeds %d characters", MaxMessageLength)
	}
	return nil
}
