package lookup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"addressbook/internal/addressbook/models"
	"addressbook/internal/addressbook/validation"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/requestcontext"
)

var tracer = otel.Tracer("addressbook/lookup")

// Finder is the search endpoint's service: it validates the query against the
// endpoint contract, delegates to a source and assigns candidate ids.
type Finder struct {
	source Lookup
	logger *slog.Logger
	newID  func() string
}

type FinderOption func(*Finder)

func WithFinderLogger(logger *slog.Logger) FinderOption {
	return func(f *Finder) {
		f.logger = logger
	}
}

// WithIDFunc overrides candidate id generation.
func WithIDFunc(fn func() string) FinderOption {
	return func(f *Finder) {
		f.newID = fn
	}
}

// NewFinder wraps a source lookup.
func NewFinder(source Lookup, opts ...FinderOption) *Finder {
	f := &Finder{source: source, newID: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns candidates or:
//   - a validation error whose message is the endpoint contract string
//   - ErrNoResults when nothing matches
//   - an internal error for source failures
func (f *Finder) Find(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error) {
	ctx, span := tracer.Start(ctx, "lookup.Find")
	defer span.End()
	span.SetAttributes(
		attribute.String("lookup.postcode", postcode),
		attribute.String("lookup.house_number", houseNumber),
	)

	if err := validation.ValidateSearchQuery(postcode, houseNumber); err != nil {
		span.SetStatus(codes.Error, "invalid query")
		return nil, err
	}

	candidates, err := f.source.Find(ctx, postcode, houseNumber)
	switch {
	case errors.Is(err, ErrNoResults):
		span.SetAttributes(attribute.Int("lookup.results", 0))
		return nil, ErrNoResults
	case dErrors.HasCode(err, dErrors.CodeValidation):
		span.SetStatus(codes.Error, "rejected by source")
		return nil, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "source failed")
		f.logWarn(ctx, "address lookup failed", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, validation.MsgSearchInternal)
	case len(candidates) == 0:
		return nil, ErrNoResults
	}

	out := make([]models.Candidate, len(candidates))
	for i, c := range candidates {
		if c.ID == "" {
			c.ID = f.newID()
		}
		out[i] = c
	}
	span.SetAttributes(attribute.Int("lookup.results", len(out)))
	return out, nil
}

func (f *Finder) logWarn(ctx context.Context, msg string, args ...any) {
	if f.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	f.logger.WarnContext(ctx, msg, args...)
}
