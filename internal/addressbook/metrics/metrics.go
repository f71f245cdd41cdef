package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeNoResults = "no_results"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Metrics provides observability for the address book module.
type Metrics struct {
	Searches           *prometheus.CounterVec
	LookupDuration     prometheus.Histogram
	EntriesCommitted   prometheus.Counter
	DuplicatesRejected prometheus.Counter
	EntriesRemoved     prometheus.Counter
	SaveFailures       prometheus.Counter
	SaveDuration       prometheus.Histogram
	BookSize           prometheus.Gauge
	ActiveSessions     prometheus.Gauge
	PublishFailures    prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New returns the metrics registered with the default Prometheus registry.
// Repeated calls return the same instance.
func New() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewWithRegistry registers a fresh set of metrics with reg. Tests pass a
// private registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_searches_total",
			Help: "Address searches by outcome",
		}, []string{"outcome"}),
		LookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "addressbook_lookup_duration_seconds",
			Help:    "Duration of address lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		EntriesCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "addressbook_entries_committed_total",
			Help: "Total number of entries added to the address book",
		}),
		DuplicatesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "addressbook_duplicates_rejected_total",
			Help: "Total number of entries rejected as duplicates",
		}),
		EntriesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "addressbook_entries_removed_total",
			Help: "Total number of entries removed from the address book",
		}),
		SaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "addressbook_save_failures_total",
			Help: "Total number of failed address book saves",
		}),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "addressbook_save_duration_seconds",
			Help:    "Duration of wholesale address book saves",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BookSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "addressbook_entries",
			Help: "Current number of entries in the address book",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "addressbook_active_sessions",
			Help: "Number of live entry sessions",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "addressbook_event_publish_failures_total",
			Help: "Total number of change events that could not be published",
		}),
	}
}

// ObserveSearch records a finished search and its outcome.
// Call with time.Now() at the start of the lookup.
func (m *Metrics) ObserveSearch(outcome string, start time.Time) {
	m.Searches.WithLabelValues(outcome).Inc()
	if outcome != OutcomeInvalid {
		m.LookupDuration.Observe(time.Since(start).Seconds())
	}
}

// ObserveSave records a save attempt.
func (m *Metrics) ObserveSave(start time.Time, err error) {
	m.SaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.SaveFailures.Inc()
	}
}

func (m *Metrics) IncrementCommitted() {
	m.EntriesCommitted.Inc()
}

func (m *Metrics) IncrementDuplicate() {
	m.DuplicatesRejected.Inc()
}

func (m *Metrics) IncrementRemoved() {
	m.EntriesRemoved.Inc()
}

func (m *Metrics) SetBookSize(n int) {
	m.BookSize.Set(float64(n))
}

func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) IncrementPublishFailure() {
	m.PublishFailures.Inc()
}
