package router

import (
	"errors"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

func buildWorld(t *testing.T, names ...string) *state.World {
	t.Helper()
	player, err := actor.NewPlayer(actor.PlayerSpec{Name: "Player"})
	if err != nil {
		t.Fatalf("failed to build player: %v", err)
	}
	w := state.NewWorld(player)
	for _, name := range names {
		npc, err := actor.NewNPC(actor.NPCSpec{Name: name}, actor.DefaultHistoryLimit)
		if err != nil {
			t.Fatalf("failed to build npc %s: %v", name, err)
		}
		if err := w.AddNPC(npc); err != nil {
			t.Fatalf("failed to add npc %s: %v", name, err)
		}
	}
	return w
}

func TestRoute_Idle(t *testing.T) {
	w := buildWorld(t, "Alice", "Bob")

	tests := []struct {
		name     string
		input    string
		wantNPC  string
		wantText string
		wantRule Rule
	}{
		{
			name:     "prefix routes to bob",
			input:    "bob: hello",
			wantNPC:  "Bob",
			wantText: "hello",
			wantRule: RulePrefix,
		},
		{
			name:     "prefix is case-insensitive",
			input:    "BOB:hello",
			wantNPC:  "Bob",
			wantText: "hello",
			wantRule: RulePrefix,
		},
		{
			name:     "all leading whitespace stripped",
			input:    "Alice:  \t how are you?",
			wantNPC:  "Alice",
			wantText: "how are you?",
			wantRule: RulePrefix,
		},
		{
			name:     "later colons kept",
			input:    "bob: the note says: run",
			wantNPC:  "Bob",
			wantText: "the note says: run",
			wantRule: RulePrefix,
		},
		{
			name:     "no prefix falls back to first npc unchanged",
			input:    "hello",
			wantNPC:  "Alice",
			wantText: "hello",
			wantRule: RuleFallback,
		},
		{
			name:     "unknown prefix falls back unchanged",
			input:    "carol: hi",
			wantNPC:  "Alice",
			wantText: "carol: hi",
			wantRule: RuleFallback,
		},
		{
			name:     "name not at start is not a prefix",
			input:    "hey bob: hi",
			wantNPC:  "Alice",
			wantText: "hey bob: hi",
			wantRule: RuleFallback,
		},
		{
			name:     "leading colon",
			input:    ": hi",
			wantNPC:  "Alice",
			wantText: ": hi",
			wantRule: RuleFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Route(w, tt.input)
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if res.NPC.Name != tt.wantNPC {
				t.Errorf("NPC = %s, want %s", res.NPC.Name, tt.wantNPC)
			}
			if res.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", res.Text, tt.wantText)
			}
			if res.Rule != tt.wantRule {
				t.Errorf("Rule = %s, want %s", res.Rule, tt.wantRule)
			}
		})
	}
}

func TestRoute_StickyWhenEngaged(t *testing.T) {
	w := buildWorld(t, "Alice", "Bob")
	if _, err := w.Engage("alice"); err != nil {
		t.Fatalf("Engage() error = %v", err)
	}

	for _, input := range []string{"bob: hello", "hello", "Alice: hi"} {
		res, err := Route(w, input)
		if err != nil {
			t.Fatalf("Route(%q) error = %v", input, err)
		}
		if res.NPC.Name != "Alice" {
			t.Errorf("Route(%q) NPC = %s, want Alice", input, res.NPC.Name)
		}
		if res.Text != input {
			t.Errorf("Route(%q) Text = %q, want input unchanged", input, res.Text)
		}
		if res.Rule != RuleActive {
			t.Errorf("Route(%q) Rule = %s, want %s", input, res.Rule, RuleActive)
		}
	}

	if _, err := w.Disengage(); err != nil {
		t.Fatalf("Disengage() error = %v", err)
	}
	res, err := Route(w, "bob: hello")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if res.NPC.Name != "Bob" {
		t.Errorf("after end, NPC = %s, want Bob", res.NPC.Name)
	}
}

func TestRoute_EmptyWorld(t *testing.T) {
	w := buildWorld(t)
	_, err := Route(w, "alice: hi")
	if !errors.Is(err, state.ErrEmptyWorld) {
		t.Errorf("Route() error = %v, want ErrEmptyWorld", err)
	}
}

func TestRoute_DoesNotMutateWorld(t *testing.T) {
	w := buildWorld(t, "Alice", "Bob")
	if _, err := Route(w, "bob: hi"); err != nil {
		t.Fatal(err)
	}
	if !w.Conversation().IsIdle() {
		t.Error("prefix routing must not start a conversation")
	}
	bob, _ := w.NPC("bob")
	if bob.Affection() != 0 || bob.History().Len() != 0 {
		t.Error("routing must not touch npc state")
	}
}
