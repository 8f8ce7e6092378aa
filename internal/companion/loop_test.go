package companion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ritmolabs/ritmo/internal/bus"
	"github.com/ritmolabs/ritmo/internal/engine"
	"github.com/ritmolabs/ritmo/internal/memory"
	"github.com/ritmolabs/ritmo/internal/orchestrator"
	"github.com/ritmolabs/ritmo/internal/risk"
	"github.com/ritmolabs/ritmo/internal/schema"
)

type stubStore struct {
	profiles  map[string]schema.Profile
	saved     []string
	exchanges [][3]string
	checkins  []schema.CheckinRecord
}

func newStubStore() *stubStore {
	return &stubStore{profiles: make(map[string]schema.Profile)}
}

func (s *stubStore) Profile(_ context.Context, userID string) (schema.Profile, bool, error) {
	p, ok := s.profiles[userID]
	return p, ok, nil
}

func (s *stubStore) SaveProfile(_ context.Context, p schema.Profile, channel, chatID string) error {
	s.profiles[p.UserID] = p
	s.saved = append(s.saved, p.UserID)
	return nil
}

func (s *stubStore) AddExchange(_ context.Context, userID, userText, systemText string) error {
	s.exchanges = append(s.exchanges, [3]string{userID, userText, systemText})
	return nil
}

func (s *stubStore) Checkins(context.Context, string, int) ([]schema.CheckinRecord, error) {
	return s.checkins, nil
}

func (s *stubStore) RecentExchanges(context.Context, string, int) ([]schema.Exchange, error) {
	return nil, nil
}

type stubCompleter struct {
	reply string
	fail  bool
	calls int
}

func (c *stubCompleter) Complete(context.Context, string, []schema.ChatMessage) (string, error) {
	c.calls++
	if c.fail {
		return "", errors.New("endpoint down")
	}
	return c.reply, nil
}

type stubEscalator struct {
	notified []string
}

func (e *stubEscalator) Notify(_ context.Context, userID string, _ schema.OrchestrationDecision, _ schema.RiskPrediction) error {
	e.notified = append(e.notified, userID)
	return nil
}

func newTestLoop(store *stubStore, completer Completer, esc Escalator) (*Loop, bus.Bus) {
	b := bus.NewMessageBus(16)
	eng := engine.New(store, nil, risk.NewBlender(nil, nil), orchestrator.New(nil, nil), nil, engine.Options{})
	l := NewLoop(b, eng, memory.NewManager(), store, completer, nil, esc)
	return l, b
}

func inbound(text string) bus.InboundMessage {
	return bus.InboundMessage{
		Channel:   "telegram",
		SenderID:  "42",
		ChatID:    "42",
		Content:   text,
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// ─── Reply flow ────────────────────────────────────────────────────────────

func TestHandle_PublishesModelReply(t *testing.T) {
	store := newStubStore()
	completer := &stubCompleter{reply: "Te escucho, cuéntame más."}
	l, b := newTestLoop(store, completer, nil)

	l.handle(context.Background(), inbound("hoy estoy triste"))

	select {
	case out := <-b.OutboundChan():
		if out.Content != "Te escucho, cuéntame más." {
			t.Errorf("unexpected reply: %q", out.Content)
		}
		if out.Channel != "telegram" || out.ChatID != "42" {
			t.Errorf("reply misaddressed: %+v", out)
		}
	default:
		t.Fatal("expected an outbound message")
	}

	if completer.calls == 0 {
		t.Error("expected the completer to be called")
	}
	if len(store.exchanges) != 1 {
		t.Fatalf("expected 1 persisted exchange, got %d", len(store.exchanges))
	}
	if store.exchanges[0][1] != "hoy estoy triste" {
		t.Errorf("wrong user text persisted: %q", store.exchanges[0][1])
	}
}

func TestHandle_CompletionFailureFallsBack(t *testing.T) {
	store := newStubStore()
	l, b := newTestLoop(store, &stubCompleter{fail: true}, nil)

	l.handle(context.Background(), inbound("hoy estoy triste"))

	out := <-b.OutboundChan()
	if out.Content == "" {
		t.Fatal("fallback reply must not be empty")
	}
	found := false
	for _, canned := range fallbackReplies[schema.StrategyEmpathetic] {
		if out.Content == canned {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a canned empathetic reply, got %q", out.Content)
	}
}

func TestHandle_NilCompleterUsesCannedBank(t *testing.T) {
	store := newStubStore()
	l, b := newTestLoop(store, nil, nil)

	l.handle(context.Background(), inbound("gracias, hoy estoy mejor"))

	out := <-b.OutboundChan()
	found := false
	for _, canned := range fallbackReplies[schema.StrategyEncouraging] {
		if out.Content == canned {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a canned encouraging reply, got %q", out.Content)
	}
}

// ─── Escalation ────────────────────────────────────────────────────────────

func TestHandle_CrisisEscalates(t *testing.T) {
	store := newStubStore()
	// An attention-level window keeps the longitudinal factor neutral.
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, st := range []schema.EmotionalState{schema.StateGood, schema.StateDifficult, schema.StateDifficult} {
		store.checkins = append(store.checkins, schema.CheckinRecord{Date: base.AddDate(0, 0, i), State: st})
	}
	esc := &stubEscalator{}
	l, b := newTestLoop(store, nil, esc)

	l.handle(context.Background(), inbound("ya no puedo más"))

	if len(esc.notified) != 1 {
		t.Fatalf("expected 1 escalation, got %d", len(esc.notified))
	}
	if !strings.HasPrefix(esc.notified[0], "telegram:") {
		t.Errorf("unexpected escalated user id: %q", esc.notified[0])
	}
	out := <-b.OutboundChan()
	found := false
	for _, canned := range fallbackReplies[schema.StrategyUrgent] {
		if out.Content == canned {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an urgent canned reply, got %q", out.Content)
	}
}

// ─── Profiles and memory ───────────────────────────────────────────────────

func TestHandle_FirstContactRegistersProfile(t *testing.T) {
	store := newStubStore()
	l, _ := newTestLoop(store, &stubCompleter{reply: "hola"}, nil)

	l.handle(context.Background(), inbound("hola"))

	if len(store.saved) != 1 || store.saved[0] != "telegram:42" {
		t.Fatalf("expected first-contact registration for telegram:42, got %v", store.saved)
	}
	if store.profiles["telegram:42"].Stage != schema.StageActiveAdult {
		t.Errorf("default profile must be an active adult, got %s", store.profiles["telegram:42"].Stage)
	}

	// A second message must not re-register.
	l.handle(context.Background(), inbound("buenas"))
	if len(store.saved) != 1 {
		t.Errorf("expected no re-registration, got %d saves", len(store.saved))
	}
}

func TestHandle_MemoryKeepsBothTurns(t *testing.T) {
	store := newStubStore()
	l, _ := newTestLoop(store, &stubCompleter{reply: "aquí estoy"}, nil)

	l.handle(context.Background(), inbound("hola"))

	recent := l.memory.Recent("telegram:42")
	if len(recent) != 2 {
		t.Fatalf("expected 2 remembered messages, got %d", len(recent))
	}
	if recent[0].Role != "user" || recent[1].Role != "assistant" {
		t.Errorf("unexpected roles: %s, %s", recent[0].Role, recent[1].Role)
	}
}
