package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"addressbook/internal/addressbook/lookup"
	"addressbook/internal/addressbook/metrics"
	"addressbook/pkg/platform/sentinel"
)

// Registry keeps the live sessions of the HTTP surface, keyed by uuid.
type Registry struct {
	lookup  lookup.Lookup
	book    Book
	ids     *IDGenerator
	logger  *slog.Logger
	metrics *metrics.Metrics
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

type RegistryOption func(*Registry)

func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithRegistryMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTTL expires sessions idle for longer than ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(source lookup.Lookup, book Book, opts ...RegistryOption) *Registry {
	r := &Registry{
		lookup:   source,
		book:     book,
		ids:      NewIDGenerator(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a new idle session.
func (r *Registry) Create() *Session {
	opts := []Option{WithIDGenerator(r.ids), WithTimeSource(r.now)}
	if r.logger != nil {
		opts = append(opts, WithLogger(r.logger))
	}
	if r.metrics != nil {
		opts = append(opts, WithMetrics(r.metrics))
	}
	s := New(uuid.NewString(), r.lookup, r.book, opts...)

	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.observeSize(n)
	return s
}

// Get returns the session or sentinel.ErrNotFound. Expired sessions are
// reported as missing.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || r.expired(s) {
		return nil, sentinel.ErrNotFound
	}
	return s, nil
}

// Delete removes the session; deleting an unknown id reports sentinel.ErrNotFound.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return sentinel.ErrNotFound
	}
	r.observeSize(n)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops expired sessions and returns how many were removed. Expiry is
// checked outside the registry lock so Get and Create are not held up.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.RLock()
	live := make(map[string]*Session, len(r.sessions))
	for id, s := range r.sessions {
		live[id] = s
	}
	r.mu.RUnlock()

	var stale []string
	for id, s := range live {
		if r.expired(s) {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	r.mu.Lock()
	removed := 0
	for _, id := range stale {
		if s, ok := r.sessions[id]; ok && s == live[id] && r.expired(s) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.observeSize(n)
		if r.logger != nil {
			r.logger.Info("expired entry sessions", "removed", removed, "remaining", n)
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if r.ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) expired(s *Session) bool {
	return r.ttl > 0 && r.now().Sub(s.LastUsed()) > r.ttl
}

func (r *Registry) observeSize(n int) {
	if r.metrics != nil {
		r.metrics.SetActiveSessions(n)
	}
}
