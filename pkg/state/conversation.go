package state

// Conversation is the session state machine: Idle, or Engaged with one NPC.
// Only the World can produce an Engaged value, and only for a key it holds.
type Conversation struct {
	npc string
}

// Idle is the state with no conversation in progress.
func Idle() Conversation {
	return Conversation{}
}

// Engaged returns the key of the engaged NPC, if any.
func (c Conversation) Engaged() (string, bool) {
	return c.npc, c.npc != ""
}

func (c Conversation) IsIdle() bool {
	return c.npc == ""
}

func (c Conversation) String() string {
	if c.npc == "" {
		return "idle"
	}
	return "engaged(" + c.npc + ")"
}
