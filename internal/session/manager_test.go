package session

import (
	"testing"
	"time"

	"github.com/marzolo/thoughts-bot/internal/constants"
	"github.com/marzolo/thoughts-bot/internal/models"
)

func TestStateDefaultsToIdle(t *testing.T) {
	sm := NewSessionManager()
	if got := sm.GetState(1); got != constants.STATE_IDLE {
		t.Fatalf("GetState = %q, want idle", got)
	}
}

func TestStateLifecycle(t *testing.T) {
	sm := NewSessionManager()
	sm.SetState(1, constants.STATE_USERNAME_CONFIRM)
	if got := sm.GetState(1); got != constants.STATE_USERNAME_CONFIRM {
		t.Fatalf("GetState = %q", got)
	}
	// Other chats are unaffected.
	if got := sm.GetState(2); got != constants.STATE_IDLE {
		t.Fatalf("GetState(2) = %q, want idle", got)
	}

	sm.ClearState(1)
	if got := sm.GetState(1); got != constants.STATE_IDLE {
		t.Fatalf("GetState after clear = %q, want idle", got)
	}
}

func TestDraftLifecycle(t *testing.T) {
	sm := NewSessionManager()
	if _, ok := sm.GetDraft(1); ok {
		t.Fatal("unexpected draft for fresh chat")
	}

	draft := ThoughtDraft{Content: "hello", CreatedAt: time.Now(), SavedName: "Alice"}
	sm.UpdateDraft(1, draft)

	got, ok := sm.GetDraft(1)
	if !ok || got.Content != "hello" || got.SavedName != "Alice" {
		t.Fatalf("GetDraft = %+v, ok=%v", got, ok)
	}

	// A new draft overwrites a stale one.
	sm.UpdateDraft(1, ThoughtDraft{Content: "fresh"})
	if got, _ := sm.GetDraft(1); got.Content != "fresh" {
		t.Fatalf("draft not overwritten: %+v", got)
	}

	sm.ClearDraft(1)
	if _, ok := sm.GetDraft(1); ok {
		t.Fatal("draft still present after clear")
	}
}

func TestCSSInputTakenOnce(t *testing.T) {
	sm := NewSessionManager()
	if _, ok := sm.TakeCSSInput(99); ok {
		t.Fatal("unexpected parked approval")
	}

	sm.SetCSSInput(99, models.ChatApproval{ChatID: 5, ChatName: "alice"})
	req, ok := sm.TakeCSSInput(99)
	if !ok || req.ChatID != 5 {
		t.Fatalf("TakeCSSInput = %+v, ok=%v", req, ok)
	}

	if _, ok := sm.TakeCSSInput(99); ok {
		t.Fatal("parked approval was not removed on take")
	}
}
