package actor

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"
)

const (
	// DefaultPlayerHP is the starting hit point total of a new player.
	DefaultPlayerHP = 100
	defaultPlayerAC = 10
)

// PlayerSpec is the serializable seed for the player.
type PlayerSpec struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	HP        int      `json:"hp,omitempty" yaml:"hp,omitempty" toml:"hp"`
	Position  Position `json:"position" yaml:"position" toml:"position"`
	Inventory []string `json:"inventory,omitempty" yaml:"inventory,omitempty" toml:"inventory"`
}

// Player is the single human-controlled character. HP lives on a d20.Actor;
// nothing in the conversation engine damages the player yet.
type Player struct {
	Name string

	position  Position
	inventory []string
	actor     *d20.Actor
}

// NewPlayer builds a player from its spec, defaulting HP to DefaultPlayerHP.
func NewPlayer(spec PlayerSpec) (*Player, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("player name cannot be empty")
	}
	hp := spec.HP
	if hp <= 0 {
		hp = DefaultPlayerHP
	}

	a, err := d20.NewActor(Key(name)).
		WithHP(hp).
		WithAC(defaultPlayerAC).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build player actor: %w", err)
	}

	p := &Player{
		Name:     name,
		position: spec.Position,
		actor:    a,
	}
	for _, item := range spec.Inventory {
		p.AddItem(item)
	}
	return p, nil
}

func (p *Player) HP() int {
	return p.actor.HP()
}

func (p *Player) Position() Position {
	return p.position
}

// MoveTo teleports the player; there is no pathfinding.
func (p *Player) MoveTo(x, y int) {
	p.position = Position{X: x, Y: y}
}

// AddItem appends an item identifier to the inventory.
func (p *Player) AddItem(item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	p.inventory = append(p.inventory, item)
}

// Inventory returns a copy of the carried item identifiers in pickup order.
func (p *Player) Inventory() []string {
	out := make([]string, len(p.inventory))
	copy(out, p.inventory)
	return out
}
