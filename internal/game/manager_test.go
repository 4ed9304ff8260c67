package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cueroom/backend/internal/config"
)

// recordingHub captures broadcast messages for assertions.
type recordingHub struct {
	mu       sync.Mutex
	messages []interface{}
}

func (h *recordingHub) BroadcastToTable(token string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *recordingHub) countType(msgType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.messages {
		if msg, ok := m.(map[string]interface{}); ok && msg["type"] == msgType {
			n++
		}
	}
	return n
}

func newTestManager() (*SessionManager, *recordingHub) {
	hub := &recordingHub{}
	sm := &SessionManager{
		sessions: make(map[string]*TableSession),
		config:   &config.Config{TickRate: 60, SessionIdleMinutes: 30},
		hub:      hub,
	}
	return sm, hub
}

func TestCreateAndGetSession(t *testing.T) {
	sm, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := sm.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !strings.HasPrefix(sess.Token, "TBL_") {
		t.Errorf("token %q missing prefix", sess.Token)
	}
	if sess.Sim.State() != StateAiming {
		t.Errorf("new session state = %s", sess.Sim.State())
	}

	got, err := sm.GetSession(sess.Token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != sess {
		t.Error("GetSession returned a different session")
	}
}

func TestGetSessionUnknownToken(t *testing.T) {
	sm, _ := newTestManager()
	if _, err := sm.GetSession("TBL_NOPE"); err == nil {
		t.Error("unknown token should error")
	}
}

func TestTakeShotDrivesStateMachine(t *testing.T) {
	sm, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, _ := sm.CreateSession(ctx)

	taken, err := sm.TakeShot(sess.Token, 100, 0)
	if err != nil {
		t.Fatalf("TakeShot: %v", err)
	}
	if !taken {
		t.Fatal("first shot should be accepted")
	}
	if sess.ShotCount != 1 {
		t.Errorf("shot count = %d, want 1", sess.ShotCount)
	}
	if sess.Sim.State() != StateSimulating {
		t.Errorf("state = %s, want %s", sess.Sim.State(), StateSimulating)
	}

	// A second shot mid-simulation is ignored, not an error.
	taken, err = sm.TakeShot(sess.Token, 0, 100)
	if err != nil {
		t.Fatalf("TakeShot: %v", err)
	}
	if taken {
		t.Error("shot while simulating should be rejected")
	}
	if sess.ShotCount != 1 {
		t.Errorf("rejected shot bumped the count to %d", sess.ShotCount)
	}
}

func TestResetTableFromManager(t *testing.T) {
	sm, hub := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, _ := sm.CreateSession(ctx)
	sm.TakeShot(sess.Token, 300, 200)

	if err := sm.ResetTable(sess.Token); err != nil {
		t.Fatalf("ResetTable: %v", err)
	}
	if sess.Sim.State() != StateAiming {
		t.Errorf("state after reset = %s", sess.Sim.State())
	}
	if hub.count() == 0 {
		t.Error("reset should broadcast to the table")
	}
}

func TestRemoveSessionStopsIt(t *testing.T) {
	sm, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, _ := sm.CreateSession(ctx)
	sm.RemoveSession(sess.Token)

	if _, err := sm.GetSession(sess.Token); err == nil {
		t.Error("removed session should not resolve")
	}
	// Removing twice is harmless.
	sm.RemoveSession(sess.Token)
}

func TestRunLoopBroadcastsFrames(t *testing.T) {
	sm, hub := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, _ := sm.CreateSession(ctx)
	sm.TakeShot(sess.Token, 500, 0)

	deadline := time.Now().Add(2 * time.Second)
	for hub.countType("frame") == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.countType("frame") == 0 {
		t.Error("run loop produced no frames after a shot")
	}
}

func TestListSessions(t *testing.T) {
	sm, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sm.CreateSession(ctx)
	sm.CreateSession(ctx)

	list := sm.ListSessions()
	if len(list) != 2 {
		t.Errorf("ListSessions returned %d entries, want 2", len(list))
	}
}

func TestGenerateTokenShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok := generateToken(10)
		if len(tok) != 10 {
			t.Fatalf("token %q has length %d", tok, len(tok))
		}
		seen[tok] = true
	}
	if len(seen) < 45 {
		t.Errorf("tokens look non-random: %d unique of 50", len(seen))
	}
}
