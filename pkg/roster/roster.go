// Package roster describes the starting cast of a world and builds it.
package roster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// Format names a roster file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Spec is the serializable description of a player and the NPC roster.
// NPC order is significant: the first NPC is the fallback target.
type Spec struct {
	Player actor.PlayerSpec `json:"player" yaml:"player" toml:"player"`
	NPCs   []actor.NPCSpec  `json:"npcs" yaml:"npcs" toml:"npcs"`
}

// AvatarSource produces a display avatar reference for an NPC name.
type AvatarSource interface {
	Avatar(ctx context.Context, name string) (string, error)
}

// Default returns the built-in two-NPC roster.
func Default() Spec {
	return Spec{
		Player: actor.PlayerSpec{
			Name:     "Player",
			HP:       actor.DefaultPlayerHP,
			Position: actor.Position{X: 0, Y: 0},
		},
		NPCs: []actor.NPCSpec{
			{
				Name:     "Alice",
				Persona:  "You are Alice, a cheerful adventurer always eager to help.",
				Position: actor.Position{X: 2, Y: 3},
			},
			{
				Name:     "Bob",
				Persona:  "You are Bob, a grumpy but kind-hearted guard.",
				Position: actor.Position{X: 8, Y: 1},
			},
		},
	}
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported roster file extension %q", filepath.Ext(path))
	}
}

// Load reads and validates a roster file.
func Load(path string) (Spec, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Spec{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read roster file: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes a roster document and validates it.
func Parse(data []byte, format Format) (Spec, error) {
	var spec Spec
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("roster parse: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &spec); err != nil {
			return Spec{}, fmt.Errorf("roster parse: %w", err)
		}
	default:
		return Spec{}, fmt.Errorf("unknown roster format %q", format)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Validate returns the first structural problem found, or nil.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Player.Name) == "" {
		return errors.New("player.name must not be empty")
	}
	if s.Player.HP < 0 {
		return errors.New("player.hp cannot be negative")
	}
	if len(s.NPCs) == 0 {
		return errors.New("roster must contain at least one npc")
	}

	seen := make(map[string]struct{}, len(s.NPCs))
	for i, npc := range s.NPCs {
		name := strings.TrimSpace(npc.Name)
		if name == "" {
			return fmt.Errorf("npcs[%d]: name must not be empty", i)
		}
		key := actor.Key(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("npcs[%d] (%q): duplicate name", i, name)
		}
		seen[key] = struct{}{}
		if npc.Affection < 0 {
			return fmt.Errorf("npcs[%d] (%q): affection cannot be negative", i, name)
		}
	}
	return nil
}

// Build creates a fresh World from the roster. avatars may be nil; an avatar
// failure leaves that NPC without a picture rather than failing the build.
func (s Spec) Build(ctx context.Context, historyLimit int, avatars AvatarSource) (*state.World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	player, err := actor.NewPlayer(s.Player)
	if err != nil {
		return nil, err
	}
	world := state.NewWorld(player)

	for _, npcSpec := range s.NPCs {
		if npcSpec.Avatar == "" && avatars != nil {
			if ref, err := avatars.Avatar(ctx, npcSpec.Name); err == nil {
				npcSpec.Avatar = ref
			}
		}
		npc, err := actor.NewNPC(npcSpec, historyLimit)
		if err != nil {
			return nil, err
		}
		if err := world.AddNPC(npc); err != nil {
			return nil, err
		}
	}
	return world, nil
}
