package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressbook/internal/addressbook/collection"
	"addressbook/internal/addressbook/lookup"
	"addressbook/internal/addressbook/metrics"
	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/sentinel"
)

// slowBook blocks every Add until release is closed, like a commit waiting
// on a slow gateway save.
type slowBook struct {
	entered chan struct{}
	release chan struct{}
}

func (b *slowBook) Add(models.Address) collection.AddResult {
	close(b.entered)
	<-b.release
	return collection.AddResult{Accepted: true}
}

func TestRegistryDoesNotWaitOnBusySessions(t *testing.T) {
	book := &slowBook{entered: make(chan struct{}), release: make(chan struct{})}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	r := NewRegistry(lookup.NewFinder(lookup.NewGenerator()), book, WithTTL(time.Minute), WithClock(clock))

	busy := r.Create()
	snap := busy.SubmitSearch(context.Background(), "2133", "2")
	require.NotEmpty(t, snap.Candidates)
	busy.SelectCandidate(snap.Candidates[0].ID)

	committed := make(chan models.SessionSnapshot)
	go func() { committed <- busy.SubmitPerson("John", "Smith") }()
	<-book.entered

	clockMu.Lock()
	now = now.Add(2 * time.Minute)
	clockMu.Unlock()

	done := make(chan int)
	go func() {
		removed := r.Sweep()
		r.Create()
		_, _ = r.Get(busy.ID())
		done <- removed
	}()

	select {
	case removed := <-done:
		assert.Equal(t, 1, removed)
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked on a session with a commit in progress")
	}

	close(book.release)
	assert.Equal(t, models.StateIdle, (<-committed).State)
}

func TestRegistry(t *testing.T) {
	source := lookup.NewFinder(lookup.NewGenerator())

	t.Run("create get delete", func(t *testing.T) {
		m := metrics.NewWithRegistry(prometheus.NewRegistry())
		r := NewRegistry(source, collection.New(), WithRegistryMetrics(m))

		s := r.Create()
		got, err := r.Get(s.ID())
		require.NoError(t, err)
		assert.Same(t, s, got)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))

		require.NoError(t, r.Delete(s.ID()))
		_, err = r.Get(s.ID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, r.Delete(s.ID()), sentinel.ErrNotFound)
		assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions))
	})

	t.Run("sessions share the book", func(t *testing.T) {
		book := collection.New()
		r := NewRegistry(source, book)
		a, b := r.Create(), r.Create()
		assert.NotEqual(t, a.ID(), b.ID())

		snap := a.SubmitSearch(context.Background(), "2133", "2")
		a.SelectCandidate(snap.Candidates[0].ID)
		a.SubmitPerson("John", "Smith")

		snap = b.SubmitSearch(context.Background(), "2133", "2")
		b.SelectCandidate(snap.Candidates[0].ID)
		dup := b.SubmitPerson("John", "Smith")
		assert.Equal(t, "This person already has this address in the address book!", dup.Error)
		assert.Equal(t, 1, book.Len())
	})

	t.Run("ttl expiry", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		r := NewRegistry(source, collection.New(), WithTTL(time.Minute), WithClock(clock))

		idle := r.Create()
		now = now.Add(30 * time.Second)
		active := r.Create()
		active.ClearAll()

		now = now.Add(45 * time.Second)
		_, err := r.Get(idle.ID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = r.Get(active.ID())
		assert.NoError(t, err)

		assert.Equal(t, 1, r.Sweep())
		assert.Equal(t, 1, r.Len())
	})

	t.Run("no ttl never expires", func(t *testing.T) {
		r := NewRegistry(source, collection.New())
		r.Create()
		assert.Equal(t, 0, r.Sweep())
	})

	t.Run("run stops with context", func(t *testing.T) {
		r := NewRegistry(source, collection.New(), WithTTL(time.Minute))
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() { done <- r.Run(ctx, time.Millisecond) }()
		cancel()
		assert.NoError(t, <-done)
	})
}
