// Package session runs player actions against a world: commands, routed
// dialog turns, affection bookkeeping and the visible transcript.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/router"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// DefaultAffectionThreshold is the affection at which an NPC's storyline unlocks.
const DefaultAffectionThreshold = 5

// Greeting is the opening line sent on the player's behalf after approach.
const Greeting = "Hello"

// Replier produces an NPC reply; *dialog.Orchestrator satisfies it.
type Replier interface {
	Reply(ctx context.Context, npc *actor.NPC, input string) (string, error)
}

// Controller is the session entry point. It processes one action at a time.
type Controller struct {
	world     *state.World
	replier   Replier
	threshold int
	logger    *slog.Logger

	mu sync.Mutex
}

// NewController creates a controller. A threshold below 1 uses
// DefaultAffectionThreshold.
func NewController(world *state.World, replier Replier, threshold int, logger *slog.Logger) *Controller {
	if threshold < 1 {
		threshold = DefaultAffectionThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		world:     world,
		replier:   replier,
		threshold: threshold,
		logger:    logger.With("session_id", world.ID.String()),
	}
}

func (c *Controller) World() *state.World {
	return c.world
}

// Status returns the current status summary.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot(c.world)
}

// Handle applies one raw player input to the world and returns the updated
// transcript with the status summary. The given transcript is never
// modified. Recoverable outcomes become transcript notices; only an empty
// world is returned as an error.
func (c *Controller) Handle(ctx context.Context, transcript []chat.Line, input string) ([]chat.Line, Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := ParseCommand(input)
	if cmd.Kind == CommandNone {
		c.logger.Debug("Empty input ignored")
		return transcript, Snapshot(c.world), nil
	}

	out := make([]chat.Line, len(transcript), len(transcript)+3)
	copy(out, transcript)

	var err error
	switch cmd.Kind {
	case CommandEnd:
		out = c.end(out)
	case CommandApproach:
		out, err = c.approach(ctx, out, cmd.Target)
	default:
		out, err = c.message(ctx, out, cmd.Text)
	}
	if err != nil {
		return transcript, Snapshot(c.world), err
	}
	return out, Snapshot(c.world), nil
}

// Approach starts a conversation with name, as the "approach <name>" command does.
func (c *Controller) Approach(ctx context.Context, transcript []chat.Line, name string) ([]chat.Line, Status, error) {
	return c.Handle(ctx, transcript, approachWord+" "+name)
}

// End finishes the current conversation, as the "exit" command does.
func (c *Controller) End(ctx context.Context, transcript []chat.Line) ([]chat.Line, Status, error) {
	return c.Handle(ctx, transcript, "exit")
}

func (c *Controller) end(out []chat.Line) []chat.Line {
	npc, err := c.world.Disengage()
	if errors.Is(err, state.ErrNoActiveConversation) {
		c.logger.Info("End requested with no active conversation")
		return append(out, chat.Notice("There is no conversation in progress"))
	}
	c.logger.Info("Conversation ended", "npc", npc.Key())
	return append(out, chat.Notice("You leave %s", npc.Name))
}

func (c *Controller) approach(ctx context.Context, out []chat.Line, target string) ([]chat.Line, error) {
	npc, err := c.world.Engage(target)
	if errors.Is(err, state.ErrTargetNotFound) {
		c.logger.Warn("Approach target not found", "npc", target)
		return append(out, chat.Notice("NPC %s not found", target)), nil
	}
	if err != nil {
		return nil, err
	}
	c.logger.Info("Player approaches NPC", "npc", npc.Key(), "position", npc.Position().String())
	out = append(out, chat.Notice("You approach %s", npc.Name))

	lock := c.world.Lock(npc)
	lock.Lock()
	defer lock.Unlock()

	reply, err := c.replier.Reply(ctx, npc, Greeting)
	if err != nil {
		c.logger.Error("Greeting failed", "npc", npc.Key(), "error", err)
		reply = dialogErrorText(err)
	}
	return append(out, chat.Line{Speaker: npc.Name, Text: reply}), nil
}

func (c *Controller) message(ctx context.Context, out []chat.Line, input string) ([]chat.Line, error) {
	res, err := router.Route(c.world, input)
	if err != nil {
		return nil, err
	}
	npc := res.NPC
	c.logger.Debug("Message routed", "npc", npc.Key(), "rule", string(res.Rule))

	lock := c.world.Lock(npc)
	lock.Lock()
	defer lock.Unlock()

	reply, err := c.replier.Reply(ctx, npc, res.Text)
	if err != nil {
		c.logger.Error("Dialog turn failed", "npc", npc.Key(), "error", err)
		reply = dialogErrorText(err)
	} else if c.world.RecordTurn(npc, c.threshold) {
		c.logger.Info("Storyline unlocked",
			"npc", npc.Key(),
			"event", c.world.EventName(state.EventKey{NPC: npc.Key(), Kind: state.EventStoryline}),
			"affection", npc.Affection())
		reply += fmt.Sprintf("\n[%s's special storyline unlocked!]", npc.Name)
	}

	return append(out,
		chat.Line{Speaker: chat.SpeakerPlayer, Text: input},
		chat.Line{Speaker: npc.Name, Text: reply},
	), nil
}

func dialogErrorText(err error) string {
	return "[dialog error]: " + err.Error()
}
