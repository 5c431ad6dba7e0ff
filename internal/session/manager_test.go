package session

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCreateSeedsGreeting(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create("CA123", "camp-1", "Hello, interested in a demo?")

	if len(s.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(s.History))
	}
	if s.History[0].Role != RoleAssistant || s.History[0].Content != "Hello, interested in a demo?" {
		t.Fatalf("unexpected first turn: %+v", s.History[0])
	}
	if s.SilenceCount != 0 {
		t.Fatalf("SilenceCount = %d, want 0", s.SilenceCount)
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	m := NewManager(time.Minute)
	m.Create("CA123", "camp-1", "hi")

	if !m.Delete("CA123") {
		t.Fatalf("Delete() = false for existing session")
	}
	if m.Delete("CA123") {
		t.Fatalf("Delete() = true for already-removed session")
	}
	if _, ok := m.Get("CA123"); ok {
		t.Fatalf("Get() should miss after delete")
	}
}

func TestAppendTurnSlidingWindow(t *testing.T) {
	m := NewManager(time.Minute)
	m.Create("CA123", "camp-1", "greeting")

	for i := 0; i < 20; i++ {
		if !m.AppendTurn("CA123", RoleUser, fmt.Sprintf("turn-%d", i)) {
			t.Fatalf("AppendTurn() = false on live session")
		}
	}

	h := m.History("CA123")
	if len(h) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(h), MaxHistory)
	}
	// The oldest excess entries are dropped; the remainder keeps its order.
	if h[0].Content != "turn-8" {
		t.Fatalf("oldest kept turn = %q, want turn-8", h[0].Content)
	}
	if h[len(h)-1].Content != "turn-19" {
		t.Fatalf("newest turn = %q, want turn-19", h[len(h)-1].Content)
	}
}

func TestMutationsOnMissingSessionAreNoOps(t *testing.T) {
	m := NewManager(time.Minute)

	if m.AppendTurn("CA404", RoleUser, "hello") {
		t.Fatalf("AppendTurn() = true for missing session")
	}
	if n := m.RecordSilence("CA404"); n != 0 {
		t.Fatalf("RecordSilence() = %d for missing session, want 0", n)
	}
	if h := m.History("CA404"); h != nil {
		t.Fatalf("History() = %v for missing session, want nil", h)
	}
}

func TestRecordSilenceNeverResets(t *testing.T) {
	m := NewManager(time.Minute)
	m.Create("CA123", "camp-1", "greeting")

	if n := m.RecordSilence("CA123"); n != 1 {
		t.Fatalf("first silence = %d, want 1", n)
	}
	// A successful utterance in between does not reset the counter.
	m.AppendTurn("CA123", RoleUser, "yes tell me more")
	if n := m.RecordSilence("CA123"); n != 2 {
		t.Fatalf("second silence = %d, want 2", n)
	}
}

func TestJanitorEvictsIdleSessions(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	m.Create("CA123", "camp-1", "greeting")

	expired := make(chan string, 1)
	m.SetExpireHook(func(s *Session) { expired <- s.CallSID })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case sid := <-expired:
		if sid != "CA123" {
			t.Fatalf("expired SID = %q, want CA123", sid)
		}
	case <-time.After(time.Second):
		t.Fatalf("janitor did not evict idle session")
	}
	if _, ok := m.Get("CA123"); ok {
		t.Fatalf("session should be gone after eviction")
	}
}

func TestLockCallSerializes(t *testing.T) {
	m := NewManager(time.Minute)
	m.Create("CA123", "camp-1", "greeting")

	unlock := m.LockCall("CA123")
	acquired := make(chan struct{})
	go func() {
		inner := m.LockCall("CA123")
		close(acquired)
		inner()
	}()

	select {
	case <-acquired:
		t.Fatalf("second LockCall acquired while first held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second LockCall never acquired after unlock")
	}
}

