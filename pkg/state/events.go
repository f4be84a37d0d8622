package state

// EventKind names a category of one-time narrative unlock.
type EventKind string

// EventStoryline is unlocked when an NPC's affection reaches the threshold.
const EventStoryline EventKind = "event"

// EventKey identifies an unlocked event for a single NPC.
type EventKey struct {
	NPC  string    `json:"npc"` // lowercase npc key
	Kind EventKind `json:"kind"`
}
