// Command server runs the agora gateway: session resolution, route guarding,
// the seller onboarding workflow, and the notification feed, in front of the
// marketplace backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"agora/internal/access/handler"
	"agora/internal/audit"
	"agora/internal/auth/device"
	authhandler "agora/internal/auth/handler"
	"agora/internal/backend"
	httpapi "agora/internal/http"
	"agora/internal/identity/cache"
	"agora/internal/notification"
	notificationhandler "agora/internal/notification/handler"
	notificationmetrics "agora/internal/notification/metrics"
	"agora/internal/platform/config"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/kafka/publisher"
	"agora/internal/platform/logger"
	platformmetrics "agora/internal/platform/metrics"
	"agora/internal/platform/middleware"
	"agora/internal/platform/postgres"
	platformredis "agora/internal/platform/redis"
	"agora/internal/seller"
	sellerhandler "agora/internal/seller/handler"
	sellermetrics "agora/internal/seller/metrics"
	sellerstore "agora/internal/seller/store"
	"agora/internal/token"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional infrastructure: each falls back to an in-process
	// implementation when unconfigured.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	pgPool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		return err
	}
	if pgPool != nil {
		defer pgPool.Close()
	}

	var identities cache.Cache
	if redisClient != nil {
		identities = cache.NewRedis(redisClient.Client)
		log.Info("identity cache backed by redis")
	} else {
		identities = cache.NewInMemory()
		log.Info("identity cache in memory")
	}

	var applications sellerstore.ApplicationStore
	if pgPool != nil {
		applications, err = sellerstore.NewPostgres(ctx, pgPool)
		if err != nil {
			log.Error("failed to prepare application store", "error", err)
			return err
		}
		log.Info("application store backed by postgres")
	} else {
		applications = sellerstore.NewInMemory()
		log.Info("application store in memory")
	}

	var auditSink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := publisher.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("failed to connect kafka producer", "error", err)
			return err
		}
		defer kafkaPublisher.Close()
		auditSink = kafkaPublisher
		log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	auditEvents := audit.NewPublisher(log)
	auditWorker := audit.NewWorker(audit.NewInMemoryStore(), auditSink, auditEvents.Inbox(), log)

	// Domain wiring.
	backendClient := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	metrics := platformmetrics.New()

	sellerManager := seller.NewManager(
		backendClient,
		backendClient,
		identities,
		applications,
		sellermetrics.New(),
		log,
	)
	defer sellerManager.Close()

	notificationManager := notification.NewManager(backendClient, backendClient, log)
	defer notificationManager.Close()

	authHandler := authhandler.New(
		backendClient,
		identities,
		tokens,
		device.NewService(true),
		metrics,
		auditEvents,
		log,
		cfg.SessionTTL,
		authhandler.AdminCredentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
	)

	validator := token.NewMiddlewareAdapter(tokens)
	router := httpapi.NewRouter(httpapi.Deps{
		Base: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.Recovery(log),
			middleware.Logger(log),
			middleware.Metrics(metrics),
		},
		Session: middleware.RequireSession(validator, log),
		Public: []httpapi.Registrar{
			registrarFunc(authHandler.Register),
		},
		Protected: []httpapi.Registrar{
			registrarFunc(authHandler.RegisterProtected),
			sellerhandler.New(sellerManager, auditEvents, log),
			notificationhandler.New(notificationManager, notificationmetrics.New(), log),
		},
		Pages:      handler.New(validator, auditEvents, log),
		Health:     healthCheck(redisClient, pgPool),
		APITimeout: cfg.BackendTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := auditWorker.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		log.Info("gateway listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("gateway stopped with error", "error", err)
		return err
	}
	log.Info("gateway stopped")
	return nil
}

type registrarFunc func(r chi.Router)

func (f registrarFunc) Register(r chi.Router) { f(r) }

func healthCheck(redisClient *platformredis.Client, pgPool *pgxpool.Pool) httpapi.Health {
	return httpapi.HealthFunc(func(r *http.Request) bool {
		ctx := r.Context()
		if redisClient != nil && redisClient.Health(ctx) != nil {
			return false
		}
		if pgPool != nil && pgPool.Ping(ctx) != nil {
			return false
		}
		return true
	})
}
