// Package escalation notifies the on-call care team when a decision carries
// the escalation flag.
package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// Notifier posts escalation alerts to a Slack channel monitored by the care
// team. It is intentionally one-way: acknowledgement and follow-up happen in
// Slack, not here.
type Notifier struct {
	client  *slack.Client
	channel string
}

func NewNotifier(token, channel string) *Notifier {
	return &Notifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// Notify posts one alert. userID is the internal identifier, never the
// user's name: the care team resolves identity in their own tooling.
func (n *Notifier) Notify(ctx context.Context, userID string, d schema.OrchestrationDecision, r schema.RiskPrediction) error {
	header := fmt.Sprintf(":rotating_light: Escalation — user %s", userID)
	body := fmt.Sprintf(
		"Risk: *%s* (p=%.2f, model confidence %.1f)\nDecision: %s / %s, priority %s",
		r.Level, r.Probability, r.ModelConfidence,
		d.Decision, d.Strategy, d.Priority,
	)
	if len(r.Factors) > 0 {
		body += "\nFactors: " + strings.Join(r.Factors, ", ")
	}
	if len(d.Resources) > 0 {
		body += "\nSuggested resources: " + strings.Join(d.Resources, "; ")
	}

	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(header+"\n"+body, false),
	)
	if err != nil {
		return fmt.Errorf("post escalation: %w", err)
	}
	slog.Info("escalation posted", "user", userID, "level", r.Level)
	return nil
}
