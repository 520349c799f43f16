// Command server runs the summit API: delegate lifecycle and event catalog
// over HTTP, the audit outbox relay, and the background job worker, all in
// one process. Optional infrastructure (Redis, Kafka, GCS, FCM) is wired
// only when configured; the service degrades rather than refusing to start.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"summit/internal/badge"
	"summit/internal/blob/gcs"
	"summit/internal/delegate"
	delegatecache "summit/internal/delegate/cache"
	delegatemetrics "summit/internal/delegate/metrics"
	delegateservice "summit/internal/delegate/service"
	delegatepg "summit/internal/delegate/store/postgres"
	"summit/internal/event"
	eventservice "summit/internal/event/service"
	eventpg "summit/internal/event/store/postgres"
	"summit/internal/jobs"
	"summit/internal/jwt"
	"summit/internal/notification"
	"summit/internal/notification/email"
	"summit/internal/notification/push"
	"summit/internal/platform/config"
	"summit/internal/platform/httpserver"
	"summit/internal/platform/kafka"
	"summit/internal/platform/logger"
	"summit/internal/platform/metrics"
	"summit/internal/platform/postgres"
	"summit/internal/platform/redis"
	auditpg "summit/pkg/platform/audit/store/postgres"
	auditworker "summit/pkg/platform/audit/worker"
	"summit/pkg/platform/middleware/metadata"
	"summit/pkg/platform/middleware/request"
	"summit/pkg/platform/middleware/requesttime"
	"summit/pkg/platform/tx"
)

// tokenIssuer names this service in the JWT "iss" claim.
const tokenIssuer = "summit-api"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	// ----- infrastructure -----

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		log.Warn("redis not configured, statistics cache and job queue disabled")
	}

	producer, err := kafka.New(cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, cfg.Kafka.AuditTopic, cfg.Kafka.TopicPartitions, cfg.Kafka.TopicReplicas); err != nil {
			return err
		}
	} else {
		log.Warn("kafka not configured, audit events stay in the outbox")
	}

	uploads, err := gcs.NewStorage(ctx, cfg.GCS)
	if err != nil {
		return err
	}
	if uploads != nil {
		defer uploads.Close()
	} else {
		log.Warn("gcs bucket not configured, document uploads disabled")
	}

	// ----- side-effect transports -----

	emailSender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		return err
	}
	pushSender, err := push.NewSender(ctx, cfg.FCM, log)
	if err != nil {
		return err
	}

	notifyOpts := []notification.Option{
		notification.WithLogger(log),
		notification.WithEmailSender(emailSender),
	}
	if pushSender != nil {
		notifyOpts = append(notifyOpts, notification.WithPushSender(pushSender))
	}
	dispatcher := notification.NewDispatcher(notifyOpts...)

	enqueuer, err := jobs.NewEnqueuer(cfg.Redis.URL, log)
	if err != nil {
		return err
	}
	if enqueuer != nil {
		defer enqueuer.Close()
	}

	// ----- services -----

	tokens := jwt.NewService(cfg.JWT.SigningKey, tokenIssuer, cfg.JWT.TTL)

	delegateStore := delegatepg.NewStore(db)
	eventStore := eventpg.NewStore(db)
	auditStore := auditpg.New(db)

	eventService := event.NewService(eventStore, eventservice.WithLogger(log))

	delegateOpts := []delegateservice.Option{
		delegateservice.WithLogger(log),
		delegateservice.WithMetrics(delegatemetrics.New()),
		delegateservice.WithTx(tx.NewSQLRunner(db)),
		delegateservice.WithAuditStore(auditStore),
		delegateservice.WithNotifier(dispatcher),
		delegateservice.WithBadgeRenderer(badge.NewRenderer()),
	}
	if uploads != nil {
		delegateOpts = append(delegateOpts, delegateservice.WithUploads(uploads))
	}
	if enqueuer != nil {
		delegateOpts = append(delegateOpts, delegateservice.WithJobs(enqueuer))
	}
	if redisClient != nil {
		delegateOpts = append(delegateOpts, delegateservice.WithStatsCache(delegatecache.New(redisClient.Client, log)))
	}
	delegateService := delegate.NewService(delegateStore, eventService, tokens, delegateOpts...)

	router := newRouter(cfg, log, delegateService, eventService, tokens, db, redisClient)
	srv := httpserver.New(cfg.Server.Addr, router)

	// ----- run everything under one supervision group -----

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if producer != nil {
		relay := auditworker.NewWorker(auditStore, producer.Sink(cfg.Kafka.AuditTopic), log,
			auditworker.WithMetrics(auditworker.NewMetrics()))
		g.Go(func() error {
			log.Info("audit relay started", "topic", cfg.Kafka.AuditTopic)
			return ignoreCancel(relay.Run(ctx))
		})
	}

	jobWorker, err := jobs.NewWorker(cfg.Redis.URL, cfg.Asynq.Concurrency,
		jobs.NewReviewPushHandler(delegateStore, dispatcher, log), log)
	if err != nil {
		return err
	}
	if jobWorker != nil {
		g.Go(func() error {
			log.Info("job worker started", "concurrency", cfg.Asynq.Concurrency)
			return ignoreCancel(jobWorker.Run(ctx))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newRouter(cfg *config.Config, log *slog.Logger, delegates *delegate.Service, events *event.Service, tokens *jwt.Service, db *sql.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(metrics.NewHTTP().Instrument)

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(db, redisClient))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		delegate.NewHandler(delegates, jwt.NewValidator(tokens), cfg.Admin.Token, log).Register(r)
		event.NewHandler(events, cfg.Admin.Token, log).Register(r)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "summit-api"})
}

// handleReadyz pings the hard dependencies. Redis is checked only when
// configured; its absence is a degraded mode, not unreadiness.
func handleReadyz(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := postgres.Health(r.Context(), db); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "error": "postgres unreachable"})
			return
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "error": "redis unreachable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write health response", "error", err)
	}
}

// ignoreCancel maps the context cancellation that drives shutdown to a clean
// exit so the errgroup does not report it as a failure.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
