package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/session"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// turn is the result of one player action, ready for display.
type turn struct {
	transcript []chat.Line
	status     string
	details    []string
}

// backend runs player actions, either in-process or against a running api.
type backend interface {
	Send(ctx context.Context, transcript []chat.Line, input string) (turn, error)
	Snapshot() turn
}

// localBackend drives a session controller in this process.
type localBackend struct {
	ctrl *session.Controller
}

func (b *localBackend) Send(ctx context.Context, transcript []chat.Line, input string) (turn, error) {
	out, _, err := b.ctrl.Handle(ctx, transcript, input)
	if err != nil {
		return turn{}, err
	}
	t := b.Snapshot()
	t.transcript = out
	return t, nil
}

func (b *localBackend) Snapshot() turn {
	return turn{
		status:  b.ctrl.Status().String(),
		details: worldDetails(b.ctrl.World()),
	}
}

func worldDetails(w *state.World) []string {
	var details []string

	if key, ok := w.Conversation().Engaged(); ok {
		if npc, found := w.NPC(key); found {
			details = append(details, "Talking to: "+npc.Name)
		}
	} else {
		details = append(details, "Talking to: nobody")
	}

	details = append(details, "Position: "+w.Player().Position().String())
	if npc, dist, err := w.Nearest(); err == nil {
		details = append(details, fmt.Sprintf("Nearest: %s (%.1f)", npc.Name, dist))
	}

	if events := w.EventNames(); len(events) > 0 {
		details = append(details, "Unlocked: "+strings.Join(events, ", "))
	}
	return details
}

// remoteBackend talks to the npc-engine api over HTTP.
type remoteBackend struct {
	client  *http.Client
	baseURL string
	last    string
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (b *remoteBackend) Send(ctx context.Context, transcript []chat.Line, input string) (turn, error) {
	jsonData, err := json.Marshal(chat.ChatRequest{Transcript: transcript, Message: input})
	if err != nil {
		return turn{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return turn{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return turn{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return turn{}, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chat.ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return turn{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return turn{}, fmt.Errorf("chat request failed: %s", chatResp.Error)
	}

	b.last = chatResp.StatusText
	return turn{transcript: chatResp.Transcript, status: chatResp.StatusText}, nil
}

func (b *remoteBackend) Snapshot() turn {
	return turn{status: b.last}
}
