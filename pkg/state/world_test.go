package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T, npcs ...actor.NPCSpec) *World {
	t.Helper()
	player, err := actor.NewPlayer(actor.PlayerSpec{Name: "Player"})
	require.NoError(t, err)

	w := NewWorld(player)
	for _, spec := range npcs {
		npc, err := actor.NewNPC(spec, actor.DefaultHistoryLimit)
		require.NoError(t, err)
		require.NoError(t, w.AddNPC(npc))
	}
	return w
}

func aliceAndBob() []actor.NPCSpec {
	return []actor.NPCSpec{
		{Name: "Alice", Persona: "You are Alice.", Position: actor.Position{X: 2, Y: 3}},
		{Name: "Bob", Persona: "You are Bob.", Position: actor.Position{X: 8, Y: 1}},
	}
}

func TestWorld_KeysAreLowercaseNames(t *testing.T) {
	w := newTestWorld(t,
		actor.NPCSpec{Name: "Alice"},
		actor.NPCSpec{Name: "BOB"},
		actor.NPCSpec{Name: "Old Tom"},
	)

	for key, npc := range w.npcs {
		assert.Equal(t, actor.Key(npc.Name), key)
	}
	assert.Equal(t, []string{"alice", "bob", "old tom"}, w.order)
}

func TestWorld_AddNPC_Duplicate(t *testing.T) {
	w := newTestWorld(t, actor.NPCSpec{Name: "Alice"})
	dup, err := actor.NewNPC(actor.NPCSpec{Name: "ALICE"}, actor.DefaultHistoryLimit)
	require.NoError(t, err)

	err = w.AddNPC(dup)
	assert.True(t, errors.Is(err, ErrDuplicateNPC))
	assert.Equal(t, 1, w.Len())
}

func TestWorld_LookupIgnoresCase(t *testing.T) {
	w := newTestWorld(t, aliceAndBob()...)

	for _, name := range []string{"alice", "ALICE", "Alice"} {
		npc, ok := w.NPC(name)
		require.True(t, ok, name)
		assert.Equal(t, "Alice", npc.Name)
	}
	_, ok := w.NPC("carol")
	assert.False(t, ok)
}

func TestWorld_First(t *testing.T) {
	empty := newTestWorld(t)
	_, err := empty.First()
	assert.ErrorIs(t, err, ErrEmptyWorld)

	w := newTestWorld(t, aliceAndBob()...)
	first, err := w.First()
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)
}

func TestWorld_EngageAndDisengage(t *testing.T) {
	w := newTestWorld(t, aliceAndBob()...)
	assert.True(t, w.Conversation().IsIdle())

	npc, err := w.Engage("BOB")
	require.NoError(t, err)
	assert.Equal(t, "Bob", npc.Name)
	assert.Equal(t, actor.Position{X: 8, Y: 1}, w.Player().Position(), "player should teleport to the npc")

	key, engaged := w.Conversation().Engaged()
	assert.True(t, engaged)
	assert.Equal(t, "bob", key)

	active, ok := w.Active()
	require.True(t, ok)
	assert.Same(t, npc, active)

	left, err := w.Disengage()
	require.NoError(t, err)
	assert.Same(t, npc, left)
	assert.True(t, w.Conversation().IsIdle())

	_, err = w.Disengage()
	assert.ErrorIs(t, err, ErrNoActiveConversation)
}

func TestWorld_EngageMissLeavesStateUntouched(t *testing.T) {
	w := newTestWorld(t, aliceAndBob()...)
	before := w.Player().Position()

	_, err := w.Engage("carol")
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.True(t, w.Conversation().IsIdle())
	assert.Equal(t, before, w.Player().Position())
}

func TestWorld_RecordTurn_UnlocksOnce(t *testing.T) {
	w := newTestWorld(t, actor.NPCSpec{Name: "Alice", Affection: 3})
	alice, _ := w.NPC("alice")
	key := EventKey{NPC: "alice", Kind: EventStoryline}

	assert.False(t, w.RecordTurn(alice, 5), "affection 4 is below threshold")
	assert.False(t, w.HasEvent(key))

	assert.True(t, w.RecordTurn(alice, 5), "affection 5 reaches threshold")
	assert.True(t, w.HasEvent(key))

	for i := 0; i < 3; i++ {
		assert.False(t, w.RecordTurn(alice, 5), "event must not unlock twice")
	}
	assert.Equal(t, 8, alice.Affection())
	assert.Equal(t, []EventKey{key}, w.Events())
	assert.Equal(t, []string{"Alice_event"}, w.EventNames())
}

func TestWorld_Nearest(t *testing.T) {
	w := newTestWorld(t, aliceAndBob()...)

	npc, dist, err := w.Nearest()
	require.NoError(t, err)
	assert.Equal(t, "Alice", npc.Name)
	assert.InDelta(t, 3.6055, dist, 0.001)

	require.NoError(t, w.MoveNPC("bob", actor.Position{X: 1, Y: 0}))
	npc, dist, err = w.Nearest()
	require.NoError(t, err)
	assert.Equal(t, "Bob", npc.Name)
	assert.Equal(t, 1.0, dist)

	assert.ErrorIs(t, w.MoveNPC("carol", actor.Position{}), ErrTargetNotFound)

	_, _, err = newTestWorld(t).Nearest()
	assert.ErrorIs(t, err, ErrEmptyWorld)
}

func TestWorld_RecordTurn_ConcurrentSessions(t *testing.T) {
	w := newTestWorld(t, aliceAndBob()...)
	alice, _ := w.NPC("alice")

	const turns = 50
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		unlocked int
	)
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := w.Lock(alice)
			l.Lock()
			defer l.Unlock()
			if w.RecordTurn(alice, 5) {
				mu.Lock()
				unlocked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, turns, alice.Affection())
	assert.Equal(t, 1, unlocked)
}

func TestConversation_String(t *testing.T) {
	assert.Equal(t, "idle", Idle().String())
	assert.Equal(t, "engaged(alice)", Conversation{npc: "alice"}.String())
}
