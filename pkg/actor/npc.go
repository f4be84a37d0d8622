package actor

import (
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var keyCaser = cases.Lower(language.Und)

// Key derives the case-insensitive lookup key for a display name.
func Key(name string) string {
	return keyCaser.String(name)
}

// NPCSpec is the serializable seed for an NPC.
type NPCSpec struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	Persona   string   `json:"persona" yaml:"persona" toml:"persona"`
	Avatar    string   `json:"avatar,omitempty" yaml:"avatar,omitempty" toml:"avatar"`
	Affection int      `json:"affection,omitempty" yaml:"affection,omitempty" toml:"affection"`
	Position  Position `json:"position" yaml:"position" toml:"position"`
}

// NPC represents a non-player character the player can talk to.
type NPC struct {
	Name   string
	Avatar string // path or URL; display only

	persona   string
	affection atomic.Int64
	position  Position
	history   *History
}

// NewNPC builds an NPC from its spec with a history capped at historyLimit.
func NewNPC(spec NPCSpec, historyLimit int) (*NPC, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("npc name cannot be empty")
	}
	if spec.Affection < 0 {
		return nil, fmt.Errorf("npc %s: affection cannot be negative", name)
	}
	npc := &NPC{
		Name:     name,
		Avatar:   spec.Avatar,
		persona:  spec.Persona,
		position: spec.Position,
		history:  NewHistory(historyLimit),
	}
	npc.affection.Store(int64(spec.Affection))
	return npc, nil
}

// Key returns the lowercase lookup key of the NPC.
func (n *NPC) Key() string {
	return Key(n.Name)
}

// Persona is the fixed instruction text defining the character's voice.
func (n *NPC) Persona() string {
	return n.persona
}

// Affection is safe to read while a turn against the NPC is in flight.
func (n *NPC) Affection() int {
	return int(n.affection.Load())
}

// IncrementAffection raises affection by exactly one and returns the new value.
func (n *NPC) IncrementAffection() int {
	return int(n.affection.Add(1))
}

func (n *NPC) Position() Position {
	return n.position
}

// SetPosition relocates the NPC. Only world-level movement calls this.
func (n *NPC) SetPosition(p Position) {
	n.position = p
}

func (n *NPC) History() *History {
	return n.history
}
