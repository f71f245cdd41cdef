package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record replays a sequence of outcomes: 'f' is a failure, 's' a success.
func record(b *Breaker, outcomes string) {
	for _, o := range outcomes {
		if o == 'f' {
			b.RecordFailure()
		} else {
			b.RecordSuccess()
		}
	}
}

func TestBreakerStartsClosed(t *testing.T) {
	b := New("kafka")
	assert.Equal(t, "kafka", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, b.IsOpen())
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		success  int
		outcomes string
		open     bool
	}{
		{name: "below failure threshold", failures: 3, success: 2, outcomes: "ff", open: false},
		{name: "opens at failure threshold", failures: 3, success: 2, outcomes: "fff", open: true},
		{name: "success resets failure count", failures: 3, success: 2, outcomes: "ffsff", open: false},
		{name: "stays open below success threshold", failures: 1, success: 2, outcomes: "fs", open: true},
		{name: "closes at success threshold", failures: 1, success: 2, outcomes: "fss", open: false},
		{name: "failure resets success count", failures: 1, success: 3, outcomes: "fssfss", open: true},
		{name: "recovers after full success run", failures: 1, success: 3, outcomes: "fssfsss", open: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("kafka", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.success))
			record(b, tt.outcomes)
			assert.Equal(t, tt.open, b.IsOpen())
		})
	}
}

func TestBreakerReportsStateChanges(t *testing.T) {
	b := New("kafka", WithFailureThreshold(2), WithSuccessThreshold(1))

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.Equal(t, StateChange{}, change)

	useFallback, change = b.RecordFailure()
	require.True(t, useFallback)
	assert.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback, "an open circuit keeps routing to the fallback")
	assert.False(t, change.Opened)

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.False(t, change.Closed)
}

func TestBreakerReset(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(5))
	record(b, "fss")
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	record(b, "f")
	assert.True(t, b.IsOpen(), "counters start from zero after reset")
}

func TestBreakerDefaults(t *testing.T) {
	b := New("kafka", WithFailureThreshold(0), WithSuccessThreshold(-1))
	assert.Equal(t, defaultFailureThreshold, b.failureThreshold)
	assert.Equal(t, defaultSuccessThreshold, b.successThreshold)

	for range defaultFailureThreshold - 1 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	for range defaultSuccessThreshold {
		b.RecordSuccess()
	}
	assert.False(t, b.IsOpen())
}
