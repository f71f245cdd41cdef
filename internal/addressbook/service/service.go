// Package service owns the address book: the in-memory collection, its
// persistence and the change feed.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"addressbook/internal/addressbook/collection"
	"addressbook/internal/addressbook/metrics"
	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/sentinel"
	"addressbook/pkg/requestcontext"
)

var tracer = otel.Tracer("addressbook/service")

const defaultSaveTimeout = 5 * time.Second

// Gateway loads and saves the whole address book.
type Gateway interface {
	Load(ctx context.Context) ([]models.Address, error)
	Save(ctx context.Context, addresses []models.Address) error
}

// ChangeSink receives change events. It must not block.
type ChangeSink interface {
	Enqueue(event models.ChangeEvent)
}

// Service persists the collection wholesale after every mutation once the
// initial load is done. Persistence failures are logged and counted; they
// never fail a commit.
type Service struct {
	book        *collection.Collection
	gateway     Gateway
	sink        ChangeSink
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	saveTimeout time.Duration

	// loadMu is held exclusively while loaded entries are merged in, so no
	// commit can slip between reading and replacing the collection.
	loadMu      sync.RWMutex
	loading     atomic.Bool
	loadOnce    sync.Once
	unsubscribe func()
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithChangeSink forwards every change to sink.
func WithChangeSink(sink ChangeSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a service over an empty collection. Loading reports true until
// Load has run.
func New(gateway Gateway, opts ...Option) *Service {
	s := &Service{
		book:        collection.New(),
		gateway:     gateway,
		logger:      slog.Default(),
		now:         time.Now,
		saveTimeout: defaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loading.Store(true)
	s.unsubscribe = s.book.Subscribe(s.onChange)
	return s
}

// Load restores the saved address book. It runs once; later calls return
// immediately. Missing or unreadable data leaves the book empty.
func (s *Service) Load(ctx context.Context) {
	s.loadOnce.Do(func() {
		defer s.loading.Store(false)
		s.load(ctx)
	})
}

func (s *Service) load(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "addressbook.load", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	loaded, err := s.gateway.Load(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.logger.InfoContext(ctx, "no saved address book, starting empty")
		loaded = nil
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.logger.WarnContext(ctx, "failed to load address book, starting empty", "error", err)
		loaded = nil
	}

	// Commits made while loading were held back from the gateway. They are
	// merged into the loaded book and written once, before any later commit
	// can save.
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	merged := loaded
	added := 0
	for _, entry := range s.book.All() {
		if collection.Check(merged, entry).IsDuplicate || containsID(merged, entry.ID) {
			continue
		}
		merged = append(merged, entry)
		added++
	}
	if len(loaded) > 0 {
		s.book.ReplaceAll(merged)
	}
	s.loading.Store(false)

	span.SetAttributes(attribute.Int("addressbook.entries", len(merged)))
	s.logger.InfoContext(ctx, "address book loaded", "entries", len(loaded), "merged", added)
	if added > 0 {
		s.save(ctx, merged)
	}
}

// Loading reports whether the initial load is still pending.
func (s *Service) Loading() bool {
	return s.loading.Load()
}

// Add commits an entry through the collection's invariants.
func (s *Service) Add(addr models.Address) collection.AddResult {
	s.loadMu.RLock()
	defer s.loadMu.RUnlock()

	result := s.book.Add(addr)
	if result.Accepted {
		s.logger.Info("address book entry added",
			"entry_id", addr.ID,
			"person_exists", result.PersonExists,
		)
	}
	return result
}

// Remove deletes an entry. Removing an unknown id is not an error.
func (s *Service) Remove(ctx context.Context, id string) bool {
	ctx, span := tracer.Start(ctx, "addressbook.remove",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("addressbook.entry_id", id)),
	)
	defer span.End()

	s.loadMu.RLock()
	removed := s.book.Remove(id)
	s.loadMu.RUnlock()

	if removed {
		if s.metrics != nil {
			s.metrics.IncrementRemoved()
		}
		s.logger.InfoContext(ctx, "address book entry removed", s.logArgs(ctx, "entry_id", id)...)
	}
	span.SetAttributes(attribute.Bool("addressbook.removed", removed))
	return removed
}

func (s *Service) List() []models.Address {
	return s.book.All()
}

func (s *Service) Grouped() []models.PersonGroup {
	return s.book.GroupedByPerson()
}

// Collection exposes the underlying collection for read access.
func (s *Service) Collection() *collection.Collection {
	return s.book
}

// Close stops persisting changes.
func (s *Service) Close() {
	s.unsubscribe()
}

func (s *Service) onChange(change models.Change) {
	if s.metrics != nil {
		s.metrics.SetBookSize(len(change.Snapshot))
	}
	// Until Load has merged the stored book, a save would overwrite it with
	// only the entries committed so far. A replace comes from Load itself.
	if !s.loading.Load() && change.Kind != models.ChangeReplaced {
		s.save(context.Background(), change.Snapshot)
	}
	if s.sink != nil {
		s.sink.Enqueue(models.NewChangeEvent(change, s.now()))
	}
}

func (s *Service) save(ctx context.Context, entries []models.Address) {
	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "addressbook.save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("addressbook.entries", len(entries))),
	)
	defer span.End()

	start := time.Now()
	err := s.gateway.Save(ctx, entries)
	if s.metrics != nil {
		s.metrics.ObserveSave(start, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		s.logger.ErrorContext(ctx, "failed to save address book", "entries", len(entries), "error", err)
	}
}

func (s *Service) logArgs(ctx context.Context, args ...any) []any {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	return args
}

func containsID(entries []models.Address, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}
