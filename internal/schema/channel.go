package schema

import (
	"context"

	"github.com/ritmolabs/ritmo/internal/bus"
)

// Channel is one chat transport (Telegram, web signals, ...).
// Defined here to avoid an import cycle between channels and the gateway.
type Channel interface {
	Name() string
	// Start blocks until ctx is cancelled.
	Start(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
}
