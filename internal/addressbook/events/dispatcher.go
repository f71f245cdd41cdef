package events

import (
	"context"
	"log/slog"
	"time"

	"addressbook/internal/addressbook/metrics"
	"addressbook/internal/addressbook/models"
)

const (
	dispatchBatchSize = 64
	publishTimeout    = 5 * time.Second
)

// Dispatcher decouples publishing from the commit path. Enqueue never blocks;
// Run drains the buffer in order and hands each event to the publisher.
type Dispatcher struct {
	publisher Publisher
	buffer    *RingBuffer
	wake      chan struct{}
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithBufferCapacity bounds the number of queued events.
func WithBufferCapacity(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.buffer = NewRingBuffer(n)
	}
}

func NewDispatcher(publisher Publisher, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.buffer == nil {
		d.buffer = NewRingBuffer(defaultBufferCapacity)
	}
	return d
}

// Enqueue queues an event for publishing.
func (d *Dispatcher) Enqueue(event models.ChangeEvent) {
	if d.buffer.Enqueue(event) {
		d.recordFailure()
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	return d.buffer.Len()
}

// Run publishes queued events until ctx is done, then flushes what is left
// with a bounded grace period.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
			d.drain(flushCtx)
			cancel()
			return nil
		case <-d.wake:
			d.drain(ctx)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		batch := d.buffer.DequeueBatch(dispatchBatchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			d.publish(ctx, event)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, event models.ChangeEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := d.publisher.Publish(pubCtx, event); err != nil {
		d.recordFailure()
		if d.logger != nil {
			d.logger.WarnContext(ctx, "failed to publish change event",
				"kind", string(event.Kind),
				"entry_id", event.EntryID,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) recordFailure() {
	if d.metrics != nil {
		d.metrics.IncrementPublishFailure()
	}
}
