package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quote_portal_backend/internal/events"
	apphttp "quote_portal_backend/internal/http"
	"quote_portal_backend/internal/http/router"
	"quote_portal_backend/internal/leadtransfer"
	"quote_portal_backend/internal/mailrelay"
	"quote_portal_backend/internal/notification"
	"quote_portal_backend/internal/quoting"
	"quote_portal_backend/internal/quoting/session"
	"quote_portal_backend/internal/scheduler"
	"quote_portal_backend/migrations"
	"quote_portal_backend/platform/cache"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/db"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	sessionSweepEvery = time.Minute
	readHeaderTimeout = 10 * time.Second
	startupAttempts   = 5
	startupBaseDelay  = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var health []apphttp.HealthChecker

	// ========================================================================
	// Infrastructure
	// ========================================================================

	pool := initDatabase(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
		health = append(health, db.NewPoolAdapter(pool))
	}

	redisClient := initRedis(ctx, cfg, log)
	var store session.Store
	var memoryStore *session.MemoryStore
	if redisClient != nil {
		defer redisClient.Close()
		health = append(health, cache.NewPingAdapter(redisClient))
		store = session.NewRedisStore(redisClient, cfg.GetSessionTTL())
	} else {
		memoryStore = session.NewMemoryStore(cfg.GetSessionTTL())
		store = memoryStore
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Modules
	// ========================================================================

	mailModule := mailrelay.NewModule(cfg, log)

	var worker *scheduler.Worker
	dispatcher, closeQueue := initDispatcher(cfg, mailModule, log)
	if closeQueue != nil {
		defer closeQueue()
		if worker, err = scheduler.NewWorker(cfg, mailModule.Sender(), log); err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
	}

	notificationModule := notification.New(dispatcher, cfg.GetNotificationEmails(), log)
	notificationModule.RegisterHandlers(eventBus)

	quotingModule := quoting.NewModule(cfg, store, pool, eventBus, val, log)
	leadTransferModule := leadtransfer.NewModule(cfg, quotingModule.Service(), eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			quotingModule,
			leadTransferModule,
			mailModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if serr := quotingModule.Service().Shutdown(shutdownCtx); serr != nil {
			log.Warn("quote pipelines did not stop in time", "error", serr)
		}
		eventBus.Wait()
		return err
	})
	if worker != nil {
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}
	if memoryStore != nil {
		g.Go(func() error {
			sweepSessions(gctx, memoryStore, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func initDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if !cfg.IsDatabaseEnabled() {
		log.Warn("DATABASE_URL not configured; submission log disabled")
		return nil
	}

	if err := withRetry(ctx, log, "database migrations", startupAttempts, startupBaseDelay, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", startupAttempts, startupBaseDelay, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")
	return pool
}

func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; sessions kept in memory")
		return nil
	}

	var client *redis.Client
	if err := withRetry(ctx, log, "redis connection", startupAttempts, startupBaseDelay, func() error {
		c, err := cache.NewRedisClient(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			return err
		}
		client = c
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")
	return client
}

// initDispatcher queues notification emails on asynq when Redis is
// configured and sends them inline otherwise.
func initDispatcher(cfg *config.Config, mail *mailrelay.Module, log *logger.Logger) (notification.Dispatcher, func()) {
	if cfg.IsRedisEnabled() {
		queueClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize notification queue", "error", err)
			panic("failed to initialize notification queue: " + err.Error())
		}
		return notification.NewQueueDispatcher(queueClient), func() {
			_ = queueClient.Close()
		}
	}

	if mail.Sender() == nil {
		log.Warn("SMTP not configured; notifications disabled")
		return nil, nil
	}
	return notification.NewDirectDispatcher(mail.Sender()), nil
}

func sweepSessions(ctx context.Context, store *session.MemoryStore, log *logger.Logger) {
	ticker := time.NewTicker(sessionSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
