// Package session implements the search, select and commit flow of one
// address entry form.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"addressbook/internal/addressbook/collection"
	"addressbook/internal/addressbook/lookup"
	"addressbook/internal/addressbook/metrics"
	"addressbook/internal/addressbook/models"
	"addressbook/internal/addressbook/validation"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/requestcontext"
)

// Book is where committed entries go. *collection.Collection satisfies it.
type Book interface {
	Add(addr models.Address) collection.AddResult
}

// Session is one entry form. All operations return the resulting snapshot;
// failures are recorded in the snapshot's Error and never returned.
type Session struct {
	id      string
	lookup  lookup.Lookup
	book    Book
	ids     *IDGenerator
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu            sync.Mutex
	generation    uint64
	state         models.SessionState
	loading       bool
	search        models.SearchFields
	person        models.PersonFields
	candidates    []models.Candidate
	selectedID    string
	errMsg        string
	lastCommitted *models.Address
	personExists  bool
	lastUsed      atomic.Int64 // unix nanos, read without mu
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithIDGenerator shares an entry id generator between sessions.
func WithIDGenerator(g *IDGenerator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// WithTimeSource overrides the clock behind LastUsed.
func WithTimeSource(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates an idle session.
func New(id string, source lookup.Lookup, book Book, opts ...Option) *Session {
	s := &Session{
		id:     id,
		lookup: source,
		book:   book,
		state:  models.StateIdle,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewIDGenerator()
	}
	s.touch()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// SubmitSearch validates the form and runs a lookup. The session lock is not
// held during the lookup; a newer search or a clear supersedes this one and its
// result is dropped.
func (s *Session) SubmitSearch(ctx context.Context, postcode, houseNumber string) models.SessionSnapshot {
	s.mu.Lock()
	s.touch()
	s.search = models.SearchFields{PostCode: postcode, HouseNumber: houseNumber}
	s.candidates = nil
	s.selectedID = ""
	if err := validation.ValidateSearchForm(postcode, houseNumber); err != nil {
		s.generation++
		s.loading = false
		s.fail(dErrors.MessageOf(err))
		s.observeSearch(metrics.OutcomeInvalid, time.Now())
		snap := s.snapshot()
		s.mu.Unlock()
		return snap
	}
	s.generation++
	gen := s.generation
	s.state = models.StateSearching
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	start := time.Now()
	candidates, err := s.lookup.Find(ctx, strings.TrimSpace(postcode), strings.TrimSpace(houseNumber))

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logDebug(ctx, "discarding superseded search result", "generation", gen)
		return s.snapshot()
	}
	s.loading = false

	switch {
	case errors.Is(err, lookup.ErrNoResults):
		s.observeSearch(metrics.OutcomeNoResults, start)
		s.fail(validation.MsgNoResults)
	case dErrors.HasCode(err, dErrors.CodeValidation):
		s.observeSearch(metrics.OutcomeInvalid, start)
		s.fail(dErrors.MessageOf(err))
	case err != nil:
		s.observeSearch(metrics.OutcomeFailed, start)
		s.logWarn(ctx, "address search failed", "error", err)
		s.fail(validation.MsgLookupFailed)
	default:
		s.observeSearch(metrics.OutcomeOK, start)
		s.candidates = candidates
		s.state = models.StateResults
	}
	return s.snapshot()
}

// SelectCandidate marks one of the current candidates. Selecting again, or
// another candidate, is allowed until commit.
func (s *Session) SelectCandidate(id string) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if len(s.candidates) == 0 || s.loading {
		s.errMsg = validation.MsgNoAddressSelected
		return s.snapshot()
	}
	if _, ok := s.candidate(id); !ok {
		s.errMsg = validation.MsgSelectedNotFound
		return s.snapshot()
	}
	s.selectedID = id
	s.state = models.StateSelected
	s.errMsg = ""
	return s.snapshot()
}

// SubmitPerson attaches a person to the selected candidate and commits the
// entry. On any failure the session keeps its candidates and selection.
func (s *Session) SubmitPerson(firstName, lastName string) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.person = models.PersonFields{FirstName: firstName, LastName: lastName}
	if err := validation.ValidatePersonName(firstName, lastName); err != nil {
		s.errMsg = dErrors.MessageOf(err)
		return s.snapshot()
	}
	selected, ok := s.candidate(s.selectedID)
	if s.selectedID == "" || !ok {
		s.errMsg = validation.MsgNoAddressSelected
		return s.snapshot()
	}

	s.state = models.StateCommitting
	entry := models.NewAddress(s.ids.Next(selected.ID), selected, firstName, lastName)
	result := s.book.Add(entry)
	if !result.Accepted {
		s.state = models.StateSelected
		if errors.Is(result.Reason, collection.ErrDuplicate) {
			s.errMsg = validation.MsgDuplicateEntry
			if s.metrics != nil {
				s.metrics.IncrementDuplicate()
			}
		} else {
			s.errMsg = dErrors.MessageOf(result.Reason)
		}
		return s.snapshot()
	}

	if s.metrics != nil {
		s.metrics.IncrementCommitted()
	}
	s.reset()
	s.lastCommitted = &entry
	s.personExists = result.PersonExists
	return s.snapshot()
}

// ClearAll returns the session to idle and drops any in-flight search result.
func (s *Session) ClearAll() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.generation++
	s.reset()
	s.lastCommitted = nil
	s.personExists = false
	return s.snapshot()
}

func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// LastUsed reports when an operation last touched the session.
// It never waits on an operation in progress.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) reset() {
	s.state = models.StateIdle
	s.loading = false
	s.search = models.SearchFields{}
	s.person = models.PersonFields{}
	s.candidates = nil
	s.selectedID = ""
	s.errMsg = ""
}

func (s *Session) fail(msg string) {
	s.state = models.StateError
	s.candidates = nil
	s.selectedID = ""
	s.errMsg = msg
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

func (s *Session) candidate(id string) (models.Candidate, bool) {
	for _, c := range s.candidates {
		if c.ID == id {
			return c, true
		}
	}
	return models.Candidate{}, false
}

func (s *Session) snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		ID:           s.id,
		State:        s.state,
		Loading:      s.loading,
		Search:       s.search,
		Person:       s.person,
		Candidates:   append([]models.Candidate{}, s.candidates...),
		SelectedID:   s.selectedID,
		Error:        s.errMsg,
		PersonExists: s.personExists,
	}
	if s.lastCommitted != nil {
		committed := *s.lastCommitted
		snap.LastCommitted = &committed
	}
	return snap
}

func (s *Session) observeSearch(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(outcome, start)
	}
}

func (s *Session) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	args = append(args, "session_id", s.id)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.WarnContext(ctx, msg, args...)
}

func (s *Session) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.DebugContext(ctx, msg, append(args, "session_id", s.id)...)
}
