package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// World owns the player, the NPC roster, unlocked events and the
// conversation state of a single play session.
type World struct {
	ID uuid.UUID

	mu           sync.RWMutex
	player       *actor.Player
	npcs         map[string]*actor.NPC
	order        []string // roster order; first entry is the routing fallback
	events       map[EventKey]struct{}
	conversation Conversation
	locks        map[string]*sync.Mutex
}

// NewWorld creates an empty world around the given player.
func NewWorld(player *actor.Player) *World {
	return &World{
		ID:     uuid.New(),
		player: player,
		npcs:   make(map[string]*actor.NPC),
		events: make(map[EventKey]struct{}),
		locks:  make(map[string]*sync.Mutex),
	}
}

// AddNPC registers an NPC under its lowercase key.
func (w *World) AddNPC(npc *actor.NPC) error {
	if npc == nil {
		return fmt.Errorf("npc cannot be nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	key := npc.Key()
	if _, exists := w.npcs[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNPC, npc.Name)
	}
	w.npcs[key] = npc
	w.order = append(w.order, key)
	w.locks[key] = &sync.Mutex{}
	return nil
}

func (w *World) Player() *actor.Player {
	return w.player
}

// NPC looks up an NPC by name, ignoring case.
func (w *World) NPC(name string) (*actor.NPC, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	npc, ok := w.npcs[actor.Key(name)]
	return npc, ok
}

// NPCs returns the roster in registration order.
func (w *World) NPCs() []*actor.NPC {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*actor.NPC, 0, len(w.order))
	for _, key := range w.order {
		out = append(out, w.npcs[key])
	}
	return out
}

func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// First returns the first registered NPC.
func (w *World) First() (*actor.NPC, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.order) == 0 {
		return nil, ErrEmptyWorld
	}
	return w.npcs[w.order[0]], nil
}

func (w *World) Conversation() Conversation {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.conversation
}

// Active returns the NPC currently engaged in conversation, if any.
func (w *World) Active() (*actor.NPC, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	key, ok := w.conversation.Engaged()
	if !ok {
		return nil, false
	}
	return w.npcs[key], true
}

// Engage starts a conversation with the named NPC and moves the player
// onto the NPC's position. A miss leaves the world untouched.
func (w *World) Engage(name string) (*actor.NPC, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := actor.Key(name)
	npc, ok := w.npcs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, name)
	}
	pos := npc.Position()
	w.player.MoveTo(pos.X, pos.Y)
	w.conversation = Conversation{npc: key}
	return npc, nil
}

// Disengage ends the active conversation and returns the NPC that was engaged.
func (w *World) Disengage() (*actor.NPC, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key, ok := w.conversation.Engaged()
	if !ok {
		return nil, ErrNoActiveConversation
	}
	w.conversation = Idle()
	return w.npcs[key], nil
}

// MoveNPC relocates an NPC on the grid.
func (w *World) MoveNPC(name string, pos actor.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	npc, ok := w.npcs[actor.Key(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, name)
	}
	npc.SetPosition(pos)
	return nil
}

// Nearest returns the NPC closest to the player and its distance.
// Ties go to the earlier roster entry.
func (w *World) Nearest() (*actor.NPC, float64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.order) == 0 {
		return nil, 0, ErrEmptyWorld
	}
	from := w.player.Position()
	var (
		best     *actor.NPC
		bestDist float64
	)
	for _, key := range w.order {
		npc := w.npcs[key]
		d := from.DistanceTo(npc.Position())
		if best == nil || d < bestDist {
			best, bestDist = npc, d
		}
	}
	return best, bestDist, nil
}

// Lock returns the per-NPC mutex guarding a conversational turn. Callers
// sharing a World across sessions hold it around route, completion,
// history append and bookkeeping so unlocks stay exactly-once.
func (w *World) Lock(npc *actor.NPC) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := npc.Key()
	l, ok := w.locks[key]
	if !ok {
		l = &sync.Mutex{}
		w.locks[key] = l
	}
	return l
}

// RecordTurn applies the bookkeeping for one successful turn: affection
// rises by exactly one, and the storyline event unlocks the first time
// affection reaches threshold. It reports whether the event unlocked now.
func (w *World) RecordTurn(npc *actor.NPC, threshold int) bool {
	affection := npc.IncrementAffection()
	if affection < threshold {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	key := EventKey{NPC: npc.Key(), Kind: EventStoryline}
	if _, done := w.events[key]; done {
		return false
	}
	w.events[key] = struct{}{}
	return true
}

func (w *World) HasEvent(key EventKey) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.events[key]
	return ok
}

// Events returns the unlocked events sorted by npc then kind.
func (w *World) Events() []EventKey {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]EventKey, 0, len(w.events))
	for k := range w.events {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NPC != out[j].NPC {
			return out[i].NPC < out[j].NPC
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// EventName renders an event as "<Name>_<kind>", e.g. "Alice_event".
func (w *World) EventName(key EventKey) string {
	w.mu.RLock()
	npc, ok := w.npcs[key.NPC]
	w.mu.RUnlock()
	name := key.NPC
	if ok {
		name = npc.Name
	}
	return name + "_" + string(key.Kind)
}

// EventNames returns the display identifiers of all unlocked events.
func (w *World) EventNames() []string {
	events := w.Events()
	out := make([]string, 0, len(events))
	for _, k := range events {
		out = append(out, w.EventName(k))
	}
	return out
}
