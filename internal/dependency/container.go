// Package dependency wires the core services using go.uber.org/dig.
package dependency

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"go.uber.org/dig"

	"github.com/ritmolabs/ritmo/internal/bus"
	"github.com/ritmolabs/ritmo/internal/channels"
	"github.com/ritmolabs/ritmo/internal/companion"
	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/engine"
	"github.com/ritmolabs/ritmo/internal/escalation"
	"github.com/ritmolabs/ritmo/internal/history"
	"github.com/ritmolabs/ritmo/internal/llm"
	"github.com/ritmolabs/ritmo/internal/memory"
	"github.com/ritmolabs/ritmo/internal/orchestrator"
	"github.com/ritmolabs/ritmo/internal/resources"
	"github.com/ritmolabs/ritmo/internal/risk"
	"github.com/ritmolabs/ritmo/internal/scheduler"
	"github.com/ritmolabs/ritmo/internal/schema"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig
// directly.
type Container struct {
	store     *history.Store
	msgBus    bus.Bus
	eng       *engine.Engine
	mem       *memory.Manager
	loop      *companion.Loop
	sched     *scheduler.Service
	chanMgr   *channels.Manager
	orch      *orchestrator.Orchestrator
	memoryTTL time.Duration
}

func (c *Container) Store() *history.Store          { return c.store }
func (c *Container) MessageBus() bus.Bus            { return c.msgBus }
func (c *Container) Engine() *engine.Engine         { return c.eng }
func (c *Container) Memory() *memory.Manager        { return c.mem }
func (c *Container) Loop() *companion.Loop          { return c.loop }
func (c *Container) Scheduler() *scheduler.Service  { return c.sched }
func (c *Container) Channels() *channels.Manager    { return c.chanMgr }
func (c *Container) MemoryTTL() time.Duration       { return c.memoryTTL }

// Orchestrator exposes the decision layer for proactive-send gating.
func (c *Container) Orchestrator() *orchestrator.Orchestrator {
	return c.orch
}

// Close releases held resources (the SQLite store).
func (c *Container) Close() error { return c.store.Close() }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, provide := range []any{
		func() *config.Config { return cfg },
		newLexicon,
		newBlender,
		newOrchestrator,
		newStore,
		newMessageBus,
		newMemoryManager,
		newEngine,
		newScheduler,
		newLoop,
		newChannelManager,
	} {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		store *history.Store,
		msgBus bus.Bus,
		eng *engine.Engine,
		mem *memory.Manager,
		loop *companion.Loop,
		sched *scheduler.Service,
		chanMgr *channels.Manager,
		orch *orchestrator.Orchestrator,
	) {
		result = &Container{
			store:     store,
			msgBus:    msgBus,
			eng:       eng,
			mem:       mem,
			loop:      loop,
			sched:     sched,
			chanMgr:   chanMgr,
			orch:      orch,
			memoryTTL: time.Duration(cfg.Engine.MemoryTTLHours) * time.Hour,
		}
	})
	return result, err
}

func newLexicon() *risk.Lexicon {
	return risk.LoadLexicon(config.LexiconPath())
}

// newBlender resolves the classifier capability once at wiring time: a
// missing or invalid weights file means heuristic-only for the lifetime of
// the process.
func newBlender(lex *risk.Lexicon) *risk.Blender {
	modelPath := filepath.Join(config.DataDir(), "risk_model.json")
	var clf schema.Classifier
	if model, err := risk.LoadModel(modelPath); err == nil {
		clf = model
		slog.Info("risk: classifier loaded", "path", modelPath)
	} else {
		slog.Info("risk: no classifier, using heuristic scoring", "path", modelPath)
	}
	return risk.NewBlender(lex, clf)
}

func newOrchestrator(lex *risk.Lexicon) *orchestrator.Orchestrator {
	crisis := resources.ForTopic(resources.DefaultLibrary(), "crisis")
	return orchestrator.New(lex, resources.Lines(crisis))
}

func newStore(cfg *config.Config) (*history.Store, error) {
	dir := cfg.History.Path
	if dir == "" {
		dir = config.DataDir()
	}
	return history.Open(dir)
}

func newMessageBus() bus.Bus {
	return bus.NewMessageBus(100)
}

func newMemoryManager() *memory.Manager {
	return memory.NewManager()
}

func newEngine(cfg *config.Config, store *history.Store, blender *risk.Blender, orch *orchestrator.Orchestrator) *engine.Engine {
	return engine.New(store, store, blender, orch, store, engine.Options{
		WindowDays:   cfg.Engine.WindowDays,
		FetchTimeout: time.Duration(cfg.Engine.FetchTimeoutSecs) * time.Second,
	})
}

func newScheduler() *scheduler.Service {
	return scheduler.NewService(config.SchedulePath())
}

func newLoop(cfg *config.Config, b bus.Bus, eng *engine.Engine, mem *memory.Manager, store *history.Store) *companion.Loop {
	var completer companion.Completer
	var summarizer schema.Summarizer
	if cfg.LLM.APIKey != "" {
		client := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.APIBase, cfg.LLM.Model)
		completer = client
		summarizer = llm.NewChatSummarizer(client)
	} else {
		slog.Warn("no LLM API key configured, replies use the canned bank")
	}

	var escalator companion.Escalator
	if cfg.Slack.Enabled && cfg.Slack.Token != "" {
		escalator = escalation.NewNotifier(cfg.Slack.Token, cfg.Slack.Channel)
	}

	return companion.NewLoop(b, eng, mem, store, completer, summarizer, escalator)
}

func newChannelManager(cfg *config.Config, b bus.Bus, eng *engine.Engine, store *history.Store) *channels.Manager {
	handler := func(ctx context.Context, userID string, snap schema.SignalSnapshot) (any, error) {
		profile, ok, err := store.Profile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			profile = schema.Profile{UserID: userID, Stage: schema.StageActiveAdult, Comms: schema.CommsText}
		}
		return eng.Evaluate(ctx, profile, snap), nil
	}
	return channels.NewManager(cfg, b, handler)
}
