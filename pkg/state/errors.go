package state

import "errors"

var (
	// ErrEmptyWorld is returned when no NPC exists to route to.
	ErrEmptyWorld = errors.New("world has no NPCs configured")

	// ErrTargetNotFound is returned when a name matches no NPC.
	ErrTargetNotFound = errors.New("target not found")

	// ErrNoActiveConversation is returned when ending a conversation while idle.
	ErrNoActiveConversation = errors.New("no active conversation")

	// ErrDuplicateNPC is returned when two NPCs share a key.
	ErrDuplicateNPC = errors.New("duplicate npc")
)
