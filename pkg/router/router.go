// Package router decides which NPC a player utterance is addressed to.
package router

import (
	"strings"
	"unicode"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// Rule names the routing rule that resolved a target.
type Rule string

const (
	RuleActive   Rule = "active"   // sticky conversation
	RulePrefix   Rule = "prefix"   // "<name>:" addressing
	RuleFallback Rule = "fallback" // first roster entry
)

// Resolution is the outcome of routing one utterance.
type Resolution struct {
	NPC  *actor.NPC
	Text string
	Rule Rule
}

// Route resolves the target NPC for input. Precedence: the active
// conversation, then a case-insensitive "<name>:" prefix (stripped along
// with following whitespace), then the first registered NPC with the input
// left as is. Route does not modify the world.
func Route(w *state.World, input string) (Resolution, error) {
	if w.Len() == 0 {
		return Resolution{}, state.ErrEmptyWorld
	}

	if npc, ok := w.Active(); ok {
		return Resolution{NPC: npc, Text: input, Rule: RuleActive}, nil
	}

	if idx := strings.IndexByte(input, ':'); idx > 0 {
		if npc, ok := w.NPC(input[:idx]); ok {
			cleaned := strings.TrimLeftFunc(input[idx+1:], unicode.IsSpace)
			return Resolution{NPC: npc, Text: cleaned, Rule: RulePrefix}, nil
		}
	}

	npc, err := w.First()
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{NPC: npc, Text: input, Rule: RuleFallback}, nil
}
