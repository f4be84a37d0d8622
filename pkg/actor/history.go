package actor

// DefaultHistoryLimit is the number of turns an NPC remembers.
const DefaultHistoryLimit = 6

// Role identifies who spoke a remembered turn.
type Role string

const (
	RolePlayer Role = "player"
	RoleNPC    Role = "npc"
)

// Turn is a single remembered utterance.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// History is a fixed-capacity FIFO of recent turns. It is the only context
// window handed to the completion service; it is not a durable transcript.
type History struct {
	turns []Turn
	limit int
}

// NewHistory creates an empty history holding at most limit turns.
// A limit below 1 falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{
		turns: make([]Turn, 0, limit+1),
		limit: limit,
	}
}

// Append adds a turn, evicting the oldest one when over capacity.
func (h *History) Append(role Role, text string) {
	h.turns = append(h.turns, Turn{Role: role, Text: text})
	if len(h.turns) > h.limit {
		h.turns = append(h.turns[:0], h.turns[len(h.turns)-h.limit:]...)
	}
}

// Turns returns a copy of the remembered turns, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	return len(h.turns)
}

func (h *History) Limit() int {
	return h.limit
}
