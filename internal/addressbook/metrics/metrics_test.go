package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveSearch(OutcomeOK, time.Now())
	m.ObserveSearch(OutcomeOK, time.Now())
	m.ObserveSearch(OutcomeInvalid, time.Now())
	m.ObserveSave(time.Now(), nil)
	m.ObserveSave(time.Now(), errors.New("down"))
	m.SetBookSize(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Searches.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.BookSize))
}

func TestNewIsShared(t *testing.T) {
	assert.Same(t, New(), New())
}
