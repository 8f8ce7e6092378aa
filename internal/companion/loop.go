// Package companion runs the chat loop: it consumes inbound messages,
// evaluates each turn, phrases a reply, and hands it back to the channel.
package companion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ritmolabs/ritmo/internal/bus"
	"github.com/ritmolabs/ritmo/internal/engine"
	"github.com/ritmolabs/ritmo/internal/memory"
	"github.com/ritmolabs/ritmo/internal/schema"
)

const completionTimeout = 45 * time.Second

// ProfileStore is the slice of the history store the loop needs.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (schema.Profile, bool, error)
	SaveProfile(ctx context.Context, p schema.Profile, channel, chatID string) error
	AddExchange(ctx context.Context, userID, userText, systemText string) error
}

// Completer phrases the reply. A nil completer (or a failing one) falls back
// to the canned bank; the decision pipeline never depends on it.
type Completer interface {
	Complete(ctx context.Context, system string, history []schema.ChatMessage) (string, error)
}

// Escalator is notified when a decision carries the escalation flag.
type Escalator interface {
	Notify(ctx context.Context, userID string, d schema.OrchestrationDecision, r schema.RiskPrediction) error
}

// Loop wires the bus to the evaluation engine and the conversation memory.
type Loop struct {
	bus        bus.Bus
	engine     *engine.Engine
	memory     *memory.Manager
	store      ProfileStore
	completer  Completer
	summarizer schema.Summarizer // nil disables memory compression
	escalator  Escalator         // nil disables external escalation
}

func NewLoop(
	b bus.Bus,
	eng *engine.Engine,
	mem *memory.Manager,
	store ProfileStore,
	completer Completer,
	summarizer schema.Summarizer,
	escalator Escalator,
) *Loop {
	return &Loop{
		bus:        b,
		engine:     eng,
		memory:     mem,
		store:      store,
		completer:  completer,
		summarizer: summarizer,
		escalator:  escalator,
	}
}

// Run consumes inbound messages until the context is canceled.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("companion loop started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("companion loop stopped")
			return ctx.Err()
		case msg := <-l.bus.InboundChan():
			l.handle(ctx, msg)
		}
	}
}

func (l *Loop) handle(ctx context.Context, msg bus.InboundMessage) {
	profile := l.resolveProfile(ctx, msg)
	slog.Info("inbound message",
		"channel", msg.Channel, "user", profile.UserID, "preview", msg.ContentPreview())

	l.memory.Add(profile.UserID, "user", msg.Content)

	res := l.engine.EvaluateMessage(ctx, profile, msg.Content)

	if res.Decision.Escalate {
		l.escalate(ctx, profile.UserID, res)
	}

	reply := l.phrase(ctx, profile, msg.Content, res)
	l.memory.Add(profile.UserID, "assistant", reply)

	l.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: reply,
	})

	if err := l.store.AddExchange(ctx, profile.UserID, msg.Content, reply); err != nil {
		slog.Warn("failed to persist exchange", "user", profile.UserID, "err", err)
	}
	if l.summarizer != nil {
		l.memory.MaybeCompress(ctx, profile.UserID, l.summarizer)
	}
}

// resolveProfile loads the sender's profile, registering a default one on
// first contact so delivery coordinates are known for proactive prompts.
func (l *Loop) resolveProfile(ctx context.Context, msg bus.InboundMessage) schema.Profile {
	userID := msg.Channel + ":" + msg.SenderID
	p, ok, err := l.store.Profile(ctx, userID)
	if err != nil {
		slog.Warn("profile lookup failed, using defaults", "user", userID, "err", err)
	}
	if ok {
		return p
	}
	p = schema.Profile{
		UserID: userID,
		Stage:  schema.StageActiveAdult,
		Comms:  schema.CommsText,
	}
	if err := l.store.SaveProfile(ctx, p, msg.Channel, msg.ChatID); err != nil {
		slog.Warn("failed to register first-contact profile", "user", userID, "err", err)
	}
	return p
}

// phrase produces the reply text. Strategy and latency are already decided;
// the model only affects wording.
func (l *Loop) phrase(ctx context.Context, profile schema.Profile, userText string, res engine.Result) string {
	if l.completer == nil {
		return fallbackReply(res.Decision.Strategy, userText)
	}

	history := append([]schema.ChatMessage{}, l.memory.Recent(profile.UserID)...)
	system := systemPrompt(res.Decision.Strategy, l.memory.ContextBlock(profile.UserID))
	if profile.Name != "" {
		system += fmt.Sprintf("\nThe user's name is %s.", profile.Name)
	}

	cctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()
	reply, err := l.completer.Complete(cctx, system, history)
	if err != nil {
		slog.Warn("completion failed, using canned reply",
			"user", profile.UserID, "strategy", res.Decision.Strategy, "err", err)
		return fallbackReply(res.Decision.Strategy, userText)
	}
	return reply
}

func (l *Loop) escalate(ctx context.Context, userID string, res engine.Result) {
	slog.Warn("escalation triggered",
		"user", userID, "risk", res.Risk.Probability, "level", res.Risk.Level)
	if l.escalator == nil {
		return
	}
	if err := l.escalator.Notify(ctx, userID, res.Decision, res.Risk); err != nil {
		slog.Error("escalation notification failed", "user", userID, "err", err)
	}
}
