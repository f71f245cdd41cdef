// Package events publishes address book change events.
package events

import (
	"context"
	"log/slog"

	"addressbook/internal/addressbook/models"
)

// Publisher delivers one change event.
type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

// LogPublisher writes change events to a structured logger. Used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	p.logger.InfoContext(ctx, "address book changed",
		"kind", string(event.Kind),
		"entry_id", event.EntryID,
		"total", event.TotalCount,
	)
	return nil
}
