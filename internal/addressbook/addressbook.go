// Package addressbook assembles the address book module: lookup, entry
// sessions, the book service and its HTTP handler.
package addressbook

import (
	"log/slog"
	"time"

	"addressbook/internal/addressbook/handler"
	"addressbook/internal/addressbook/lookup"
	"addressbook/internal/addressbook/metrics"
	"addressbook/internal/addressbook/service"
	"addressbook/internal/addressbook/session"
	platformmetrics "addressbook/internal/platform/metrics"
)

// Service owns the collection and its persistence.
type Service = service.Service

// Handler wires HTTP endpoints to the module.
type Handler = handler.Handler

// Sessions keeps the live entry sessions.
type Sessions = session.Registry

// Deps are the collaborators of the module. Source defaults to the mock
// region generator.
type Deps struct {
	Source      lookup.Lookup
	Gateway     service.Gateway
	Sink        service.ChangeSink
	SessionTTL  time.Duration
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	HTTPMetrics *platformmetrics.Metrics
}

// Module is the assembled address book.
type Module struct {
	Service  *Service
	Sessions *Sessions
	Handler  *Handler
}

// New builds the module. Call Service.Load to restore saved entries.
func New(deps Deps) *Module {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Source == nil {
		deps.Source = lookup.NewGenerator()
	}

	svcOpts := []service.Option{service.WithLogger(deps.Logger)}
	regOpts := []session.RegistryOption{
		session.WithRegistryLogger(deps.Logger),
		session.WithTTL(deps.SessionTTL),
	}
	if deps.Metrics != nil {
		svcOpts = append(svcOpts, service.WithMetrics(deps.Metrics))
		regOpts = append(regOpts, session.WithRegistryMetrics(deps.Metrics))
	}
	if deps.Sink != nil {
		svcOpts = append(svcOpts, service.WithChangeSink(deps.Sink))
	}

	svc := service.New(deps.Gateway, svcOpts...)
	finder := lookup.NewFinder(deps.Source, lookup.WithFinderLogger(deps.Logger))
	sessions := session.NewRegistry(finder, svc, regOpts...)

	return &Module{
		Service:  svc,
		Sessions: sessions,
		Handler:  handler.New(finder, svc, sessions, deps.Logger, deps.HTTPMetrics),
	}
}
