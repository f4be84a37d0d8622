package dialog_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
	"github.com/jwebster45206/npc-engine/pkg/dialog"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelError, // Reduce noise in tests
}))

func newAlice(t *testing.T, limit int) *actor.NPC {
	t.Helper()
	npc, err := actor.NewNPC(actor.NPCSpec{
		Name:    "Alice",
		Persona: "You are Alice, a cheerful adventurer always eager to help.",
	}, limit)
	if err != nil {
		t.Fatalf("failed to build npc: %v", err)
	}
	return npc
}

func TestBuildMessages(t *testing.T) {
	npc := newAlice(t, 6)
	npc.History().Append(actor.RolePlayer, "hi")
	npc.History().Append(actor.RoleNPC, "hello!")

	got := dialog.BuildMessages(npc, "how are you?")
	want := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: npc.Persona()},
		{Role: chat.ChatRoleUser, Content: "hi"},
		{Role: chat.ChatRoleAgent, Content: "hello!"},
		{Role: chat.ChatRoleUser, Content: "how are you?"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReply_Success(t *testing.T) {
	mock := services.NewMockLLMAPI()
	mock.SetChatResponse("  Nice to meet you!  ")
	o := dialog.NewOrchestrator(mock, time.Second, testLogger)
	npc := newAlice(t, 6)

	reply, err := o.Reply(context.Background(), npc, "hello")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply != "Nice to meet you!" {
		t.Errorf("Reply() = %q, want trimmed reply", reply)
	}

	turns := npc.History().Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(turns))
	}
	if turns[0] != (actor.Turn{Role: actor.RolePlayer, Text: "hello"}) {
		t.Errorf("unexpected player turn %+v", turns[0])
	}
	if turns[1] != (actor.Turn{Role: actor.RoleNPC, Text: "Nice to meet you!"}) {
		t.Errorf("unexpected npc turn %+v", turns[1])
	}

	calls := mock.GetCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(calls))
	}
	if calls[0].Messages[0].Role != chat.ChatRoleSystem {
		t.Errorf("first message role = %s, want system", calls[0].Messages[0].Role)
	}
}

func TestReply_HistoryStaysBounded(t *testing.T) {
	mock := services.NewMockLLMAPI()
	o := dialog.NewOrchestrator(mock, time.Second, testLogger)
	npc := newAlice(t, 6)

	for i := 0; i < 10; i++ {
		if _, err := o.Reply(context.Background(), npc, "again"); err != nil {
			t.Fatalf("Reply() error = %v", err)
		}
		if npc.History().Len() > 6 {
			t.Fatalf("history length %d exceeds cap", npc.History().Len())
		}
	}

	// persona + 6 remembered turns + new input
	calls := mock.GetCalls()
	if got := len(calls[len(calls)-1].Messages); got != 8 {
		t.Errorf("last request carried %d messages, want 8", got)
	}
}

func TestReply_FailureLeavesHistoryUntouched(t *testing.T) {
	mock := services.NewMockLLMAPI()
	upstream := errors.New("connection refused")
	mock.SetChatError(upstream)
	o := dialog.NewOrchestrator(mock, time.Second, testLogger)
	npc := newAlice(t, 6)

	_, err := o.Reply(context.Background(), npc, "hello")

	var ce *dialog.CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompletionError, got %T: %v", err, err)
	}
	if ce.NPC != "Alice" {
		t.Errorf("CompletionError.NPC = %q, want Alice", ce.NPC)
	}
	if !errors.Is(err, upstream) {
		t.Error("CompletionError should unwrap to the upstream error")
	}
	if npc.History().Len() != 0 {
		t.Errorf("history length = %d after failure, want 0", npc.History().Len())
	}
}

func TestReply_NotConfigured(t *testing.T) {
	o := dialog.NewOrchestrator(nil, 0, nil)
	npc := newAlice(t, 6)

	_, err := o.Reply(context.Background(), npc, "hello")
	if !errors.Is(err, dialog.ErrNotConfigured) {
		t.Errorf("Reply() error = %v, want ErrNotConfigured", err)
	}
	var ce *dialog.CompletionError
	if !errors.As(err, &ce) {
		t.Errorf("expected *CompletionError, got %T", err)
	}
}

func TestReply_TimeoutIsCompletionError(t *testing.T) {
	mock := services.NewMockLLMAPI()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	o := dialog.NewOrchestrator(mock, 10*time.Millisecond, testLogger)
	npc := newAlice(t, 6)

	_, err := o.Reply(context.Background(), npc, "hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Reply() error = %v, want deadline exceeded", err)
	}
	var ce *dialog.CompletionError
	if !errors.As(err, &ce) {
		t.Errorf("expected *CompletionError, got %T", err)
	}
	if npc.History().Len() != 0 {
		t.Error("history must not change on timeout")
	}
}

func TestReply_NilResponse(t *testing.T) {
	mock := services.NewMockLLMAPI()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, nil
	}
	o := dialog.NewOrchestrator(mock, time.Second, testLogger)

	_, err := o.Reply(context.Background(), newAlice(t, 6), "hello")
	var ce *dialog.CompletionError
	if !errors.As(err, &ce) {
		t.Errorf("expected *CompletionError for nil response, got %v", err)
	}
}
