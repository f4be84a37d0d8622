package session

import (
	"strconv"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/state"
)

// StatusEntry is one display name and its scalar: HP for the player,
// affection for an NPC.
type StatusEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Status lists the player first, then NPCs in roster order.
type Status []StatusEntry

// Snapshot reads the current status of w.
func Snapshot(w *state.World) Status {
	npcs := w.NPCs()
	out := make(Status, 0, len(npcs)+1)
	if p := w.Player(); p != nil {
		out = append(out, StatusEntry{Name: p.Name, Value: p.HP()})
	}
	for _, npc := range npcs {
		out = append(out, StatusEntry{Name: npc.Name, Value: npc.Affection()})
	}
	return out
}

// Map returns the display name -> scalar mapping.
func (s Status) Map() map[string]int {
	m := make(map[string]int, len(s))
	for _, e := range s {
		m[e.Name] = e.Value
	}
	return m
}

func (s Status) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.Name + ": " + strconv.Itoa(e.Value)
	}
	return strings.Join(parts, " | ")
}
