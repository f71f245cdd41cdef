package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"addressbook/internal/addressbook"
	"addressbook/internal/addressbook/events"
	"addressbook/internal/addressbook/lookup"
	abmetrics "addressbook/internal/addressbook/metrics"
	"addressbook/internal/addressbook/service"
	"addressbook/internal/addressbook/store"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/httpserver"
	"addressbook/internal/platform/kafka"
	"addressbook/internal/platform/logger"
	platformmetrics "addressbook/internal/platform/metrics"
	"addressbook/internal/platform/objectstore"
	"addressbook/internal/platform/postgres"
	"addressbook/internal/platform/redis"
	"addressbook/pkg/platform/circuit"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
	topicPartitions = 1
	topicReplicas   = 1
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/addressbook.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}()

	gateway, closer, err := buildGateway(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	bookMetrics := abmetrics.New()
	publisher, closer, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	dispatcher := events.NewDispatcher(publisher,
		events.WithDispatcherLogger(log),
		events.WithDispatcherMetrics(bookMetrics),
	)

	module := addressbook.New(addressbook.Deps{
		Source:      buildSource(cfg),
		Gateway:     gateway,
		Sink:        dispatcher,
		SessionTTL:  cfg.SessionTTL,
		Logger:      log,
		Metrics:     bookMetrics,
		HTTPMetrics: platformmetrics.New(),
	})
	defer module.Service.Close()

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	module.Handler.Register(router)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		module.Service.Load(gctx)
		return nil
	})
	g.Go(func() error {
		return module.Sessions.Run(gctx, sweepInterval)
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting addressbook", "addr", cfg.Addr, "store", cfg.Store.Backend, "events", cfg.Kafka.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildGateway selects the persistence backend. The returned closer, when
// non-nil, releases the backend connection on exit.
func buildGateway(ctx context.Context, cfg config.Server, log *slog.Logger) (service.Gateway, io.Closer, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis store", "key", cfg.Redis.Key)
		return store.NewRedis(client.Client, store.WithRedisKey(cfg.Redis.Key)), client, nil
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgres(db, cfg.Postgres.Name)
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("using postgres store", "name", cfg.Postgres.Name)
		return pg, db, nil
	case config.BackendMinio:
		client, err := objectstore.New(cfg.Minio)
		if err != nil {
			return nil, nil, err
		}
		objects := store.NewObjectStore(client, cfg.Minio.Bucket, "")
		if err := objects.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		log.Info("using object store", "bucket", cfg.Minio.Bucket)
		return objects, nil, nil
	default:
		log.Info("using in-memory store")
		return store.NewInMemory(), nil, nil
	}
}

// buildPublisher returns the change event publisher. Without brokers events
// are only logged; with brokers a breaker falls back to logging while Kafka
// is unreachable.
func buildPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (events.Publisher, io.Closer, error) {
	logPublisher := events.NewLogPublisher(log)
	if !cfg.Kafka.Enabled() {
		return logPublisher, nil, nil
	}

	client, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if err := events.EnsureTopic(ctx, client, cfg.Kafka.Topic, topicPartitions, topicReplicas); err != nil {
		client.Close()
		return nil, nil, err
	}
	primary := events.NewKafkaPublisher(client, cfg.Kafka.Topic)
	breaker := circuit.New("kafka")
	return events.NewFallbackPublisher(primary, logPublisher, breaker, log), closerFunc(func() error {
		client.Close()
		return nil
	}), nil
}

func buildSource(cfg config.Server) lookup.Lookup {
	if cfg.Lookup.URL != "" {
		return lookup.NewHTTPClient(cfg.Lookup.URL)
	}
	return lookup.NewGenerator(lookup.WithLatency(cfg.Lookup.Latency))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
