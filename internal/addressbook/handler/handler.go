package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"addressbook/internal/addressbook/lookup"
	"addressbook/internal/addressbook/models"
	"addressbook/internal/addressbook/session"
	"addressbook/internal/addressbook/validation"
	"addressbook/internal/platform/metrics"
	"addressbook/internal/platform/middleware"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/httputil"
	"addressbook/pkg/platform/middleware/metadata"
	"addressbook/pkg/platform/middleware/requesttime"
	"addressbook/pkg/platform/sentinel"
)

// Finder serves the address search endpoint.
type Finder interface {
	Find(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error)
}

// AddressBook is the read and remove side of the book service.
type AddressBook interface {
	List() []models.Address
	Grouped() []models.PersonGroup
	Remove(ctx context.Context, id string) bool
	Loading() bool
}

// Sessions keeps the entry sessions.
type Sessions interface {
	Create() *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string) error
}

const requestTimeout = 30 * time.Second

// Handler serves the search endpoint, entry sessions and the address book.
type Handler struct {
	finder   Finder
	book     AddressBook
	sessions Sessions
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a Handler. metrics may be nil.
func New(finder Finder, book AddressBook, sessions Sessions, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		finder:   finder,
		book:     book,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register registers the address book routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))

	router.Get("/api/getAddresses", h.handleGetAddresses)

	router.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Delete("/", h.handleDeleteSession)
			r.Post("/search", h.handleSearch)
			r.Post("/select", h.handleSelect)
			r.Post("/person", h.handlePerson)
			r.Post("/clear", h.handleClear)
		})
	})

	router.Get("/addressbook", h.handleListAddresses)
	router.Get("/addressbook/grouped", h.handleGroupedAddresses)
	router.Delete("/addressbook/{id}", h.handleRemoveAddress)

	router.Get("/healthz", h.handleHealth)

	r.Mount("/", router)
}

// handleGetAddresses implements the search endpoint contract. Repeated query
// parameters use their first value.
func (h *Handler) handleGetAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	query := r.URL.Query()

	candidates, err := h.finder.Find(ctx, query.Get("postcode"), query.Get("streetnumber"))
	switch {
	case errors.Is(err, lookup.ErrNoResults):
		httputil.WriteJSON(w, http.StatusNotFound, models.SearchResponse{
			Status:       models.StatusError,
			ErrorMessage: validation.MsgNoResults,
		})
	case dErrors.HasCode(err, dErrors.CodeValidation):
		h.logger.InfoContext(ctx, "rejected address search",
			"request_id", requestID,
			"reason", dErrors.MessageOf(err),
		)
		httputil.WriteJSON(w, http.StatusBadRequest, models.SearchResponse{
			Status:       models.StatusError,
			ErrorMessage: dErrors.MessageOf(err),
		})
	case err != nil:
		h.logger.ErrorContext(ctx, "address search failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, models.SearchResponse{
			Status:       models.StatusError,
			ErrorMessage: validation.MsgSearchInternal,
		})
	default:
		httputil.WriteJSON(w, http.StatusOK, models.SearchResponse{
			Status:  models.StatusOK,
			Details: candidates,
		})
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	h.logger.InfoContext(r.Context(), "entry session created",
		"request_id", middleware.GetRequestID(r.Context()),
		"session_id", s.ID(),
	)
	httputil.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.SubmitSearch(r.Context(), req.PostCode, req.HouseNumber))
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.SelectRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Normalize()
	httputil.WriteJSON(w, http.StatusOK, s.SelectCandidate(req.ID))
}

func (h *Handler) handlePerson(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.PersonRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap := s.SubmitPerson(req.FirstName, req.LastName)
	if snap.LastCommitted != nil && snap.Error == "" {
		h.logger.InfoContext(r.Context(), "address committed",
			"request_id", middleware.GetRequestID(r.Context()),
			"session_id", s.ID(),
			"entry_id", snap.LastCommitted.ID,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.ClearAll())
}

func (h *Handler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	entries := h.book.List()
	httputil.WriteJSON(w, http.StatusOK, models.AddressBookResponse{
		Addresses: entries,
		Count:     len(entries),
		Loading:   h.book.Loading(),
	})
}

func (h *Handler) handleGroupedAddresses(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.GroupedResponse{
		Groups:  h.book.Grouped(),
		Loading: h.book.Loading(),
	})
}

// handleRemoveAddress is idempotent: removing an unknown id also returns 204.
func (h *Handler) handleRemoveAddress(w http.ResponseWriter, r *http.Request) {
	h.book.Remove(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"loading": h.book.Loading(),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeSessionError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
		return
	}
	h.logger.ErrorContext(r.Context(), "session lookup failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed"))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}
