package events

import (
	"context"
	"log/slog"

	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/circuit"
)

// FallbackPublisher sends events to a primary publisher and, while the primary
// keeps failing, to a fallback as well so changes stay visible.
type FallbackPublisher struct {
	primary  Publisher
	fallback Publisher
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackPublisher(primary, fallback Publisher, breaker *circuit.Breaker, logger *slog.Logger) *FallbackPublisher {
	return &FallbackPublisher{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

// Publish returns the primary's error only when the fallback was not used.
func (p *FallbackPublisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	err := p.primary.Publish(ctx, event)
	if err == nil {
		if _, change := p.breaker.RecordSuccess(); change.Closed {
			p.logger.InfoContext(ctx, "event publisher recovered", "breaker", p.breaker.Name())
		}
		return nil
	}

	useFallback, change := p.breaker.RecordFailure()
	if change.Opened {
		p.logger.WarnContext(ctx, "event publisher failing, using fallback",
			"breaker", p.breaker.Name(),
			"error", err,
		)
	}
	if useFallback {
		return p.fallback.Publish(ctx, event)
	}
	return err
}
