package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ritmolabs/ritmo/internal/bus"
	"github.com/ritmolabs/ritmo/internal/config"
	"github.com/ritmolabs/ritmo/internal/dependency"
	"github.com/ritmolabs/ritmo/internal/metrics"
	"github.com/ritmolabs/ritmo/internal/scheduler"
	"github.com/ritmolabs/ritmo/internal/schema"
	"github.com/ritmolabs/ritmo/internal/signals"
)

const defaultCheckinPrompt = "Hola, ¿cómo estás hoy? Cuéntame cómo va tu día. 🫀"

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the companion service: channels, scheduler, and the reply loop",
	RunE:  runGateway,
}

func runGateway(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	c, err := dependency.New(cfg)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer c.Close()

	c.Scheduler().SetOnJob(func(ctx context.Context, job scheduler.Job) error {
		return dispatchJob(ctx, c, cfg, job)
	})

	enabled := c.Channels().EnabledChannels()
	fmt.Printf("%s ritmo gateway starting (channels: %s)\n", logo, strings.Join(enabled, ", "))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Loop().Run(gctx) })
	g.Go(func() error { return c.Scheduler().Start(gctx) })
	g.Go(func() error { return c.Channels().StartAll(gctx) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Println("gateway stopped")
	return nil
}

// dispatchJob routes a fired scheduler job to the right service.
func dispatchJob(ctx context.Context, c *dependency.Container, cfg *config.Config, job scheduler.Job) error {
	switch job.Payload.Kind {
	case scheduler.KindCheckinPrompt:
		return sendCheckinPrompt(ctx, c, job)
	case scheduler.KindWeeklyReport:
		return sendWeeklyReport(ctx, c, cfg, job)
	case scheduler.KindMemorySweep:
		evicted := c.Memory().EvictIdle(c.MemoryTTL())
		slog.Info("scheduler: memory sweep done", "evicted", evicted)
		return nil
	default:
		return fmt.Errorf("unknown job payload kind %q", job.Payload.Kind)
	}
}

// sendCheckinPrompt publishes the daily prompt to the user's delivery
// channel, gated by the orchestrator so routine nudges never reach a user
// the decision pipeline should be handling instead.
func sendCheckinPrompt(ctx context.Context, c *dependency.Container, job scheduler.Job) error {
	channel, chatID, err := resolveDelivery(ctx, c, job)
	if err != nil {
		return err
	}

	if job.Payload.UserID != "" {
		daysInactive := daysSinceLastExchange(ctx, c, job.Payload.UserID)
		// The scheduler path has no session telemetry; neutral durations keep
		// the session and latency rules out of the gate, so only inactivity
		// can suppress the prompt.
		state := signals.InferState(schema.SignalSnapshot{
			AccessTime:      time.Now().Format("15:04"),
			Weekday:         time.Now().Weekday(),
			PrevSessionSecs: 120,
			DaysInactive:    daysInactive,
		})
		if !c.Orchestrator().ShouldNotify(state.Kind, daysInactive) {
			slog.Info("scheduler: check-in prompt suppressed",
				"user", job.Payload.UserID, "state", state.Kind, "days_inactive", daysInactive)
			return nil
		}
	}

	text := job.Payload.Message
	if text == "" {
		text = defaultCheckinPrompt
	}
	c.MessageBus().PublishOutbound(bus.OutboundMessage{
		Channel: channel,
		ChatID:  chatID,
		Content: text,
	})
	return nil
}

// sendWeeklyReport computes the user's longitudinal summary and delivers it.
func sendWeeklyReport(ctx context.Context, c *dependency.Container, cfg *config.Config, job scheduler.Job) error {
	channel, chatID, err := resolveDelivery(ctx, c, job)
	if err != nil {
		return err
	}

	checkins, err := c.Store().Checkins(ctx, job.Payload.UserID, cfg.Engine.WindowDays)
	if err != nil {
		return fmt.Errorf("load check-ins for %s: %w", job.Payload.UserID, err)
	}
	m := metrics.Compute(checkins, cfg.Engine.WindowDays)
	alerts := metrics.DetectAlerts(m, checkins)
	report := metrics.BuildReport(m, alerts)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Resumen semanal\n\n%s\n", report.Summary)
	if len(report.Recommendations) > 0 {
		sb.WriteString("\nRecomendaciones:\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&sb, "  • %s\n", r)
		}
	}

	c.MessageBus().PublishOutbound(bus.OutboundMessage{
		Channel: channel,
		ChatID:  chatID,
		Content: sb.String(),
	})
	return nil
}

// daysSinceLastExchange derives inactivity from the stored conversation
// history. No history at all counts as inactive long enough to nudge.
func daysSinceLastExchange(ctx context.Context, c *dependency.Container, userID string) int {
	exchanges, err := c.Store().RecentExchanges(ctx, userID, 1)
	if err != nil || len(exchanges) == 0 {
		return 2
	}
	return int(time.Since(exchanges[len(exchanges)-1].Timestamp).Hours() / 24)
}

// resolveDelivery picks the destination: the payload's explicit channel/chat
// if present, otherwise the user's registered delivery profile.
func resolveDelivery(ctx context.Context, c *dependency.Container, job scheduler.Job) (channel, chatID string, err error) {
	if job.Payload.Channel != "" && job.Payload.ChatID != "" {
		return job.Payload.Channel, job.Payload.ChatID, nil
	}
	if job.Payload.UserID == "" {
		return "", "", fmt.Errorf("job %s has neither a delivery target nor a user", job.ID)
	}
	profiles, err := c.Store().Profiles(ctx)
	if err != nil {
		return "", "", err
	}
	for _, p := range profiles {
		if p.Profile.UserID == job.Payload.UserID && p.Channel != "" && p.ChatID != "" {
			return p.Channel, p.ChatID, nil
		}
	}
	return "", "", fmt.Errorf("no delivery channel registered for user %s", job.Payload.UserID)
}
