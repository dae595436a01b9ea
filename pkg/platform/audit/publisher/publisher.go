package publisher

import (
	"context"
	"log/slog"

	audit "storefront/pkg/platform/audit"
)

// Channel is an in-process publisher backed by a buffered channel drained
// by a worker. Emit never blocks the request path: when the buffer is full
// the event is dropped and logged, on the theory that a slow audit sink
// must not take down order placement.
type Channel struct {
	outbox chan<- audit.Event
	logger *slog.Logger
}

// Option configures a Channel publisher.
type Option func(*Channel)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Channel) {
		p.logger = logger
	}
}

func NewChannel(outbox chan<- audit.Event, opts ...Option) *Channel {
	p := &Channel{outbox: outbox}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Channel) Emit(ctx context.Context, event audit.Event) error {
	select {
	case p.outbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.logger != nil {
			p.logger.Warn("audit outbox full, dropping event",
				"action", event.Action,
				"category", event.Category,
			)
		}
		return nil
	}
}
