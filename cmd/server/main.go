// Package main is the entry point of the wellness hub API server.
//
// The server keeps student profiles in memory, evaluates signal rules on every
// command and, when enabled, projects the results into the optional sinks:
// a Redis snapshot cache, a Postgres notification archive and a NATS relay.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/config"
	"github.com/alem-hub/wellness-hub/internal/application/eventhandler"
	"github.com/alem-hub/wellness-hub/internal/application/query"
	"github.com/alem-hub/wellness-hub/internal/application/store"
	"github.com/alem-hub/wellness-hub/internal/domain/signal"
	"github.com/alem-hub/wellness-hub/internal/infrastructure/messaging"
	"github.com/alem-hub/wellness-hub/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/wellness-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/wellness-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/wellness-hub/internal/infrastructure/scheduler/jobs"
	httpapi "github.com/alem-hub/wellness-hub/internal/interface/http"
	"github.com/alem-hub/wellness-hub/internal/interface/http/handlers"
	"github.com/alem-hub/wellness-hub/pkg/circuitbreaker"
	"github.com/alem-hub/wellness-hub/pkg/logger"
	"github.com/alem-hub/wellness-hub/pkg/retry"
	"github.com/alem-hub/wellness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: cfg.App.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting wellness hub",
		zap.String("env", string(cfg.App.Environment)),
		zap.String("version", cfg.App.Version),
		zap.String("timezone", cfg.App.Timezone),
		zap.Strings("features", cfg.Features.Enabled()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. EVENT BUS AND PROFILE REGISTRY
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.Events.Async,
		WorkerPoolSize: cfg.Events.WorkerPoolSize,
		Logger:         log,
	})

	clock := timeutil.NewSystemClock(cfg.App.Location)
	registry := store.NewRegistry(store.Dependencies{
		Engine:    signal.NewEngine(signal.WithCareerRecommendation(cfg.Features.IsEnabled(config.FeatureCareerRecommendation))),
		Publisher: bus,
		Clock:     clock,
		Logger:    log,
	})

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	sched := scheduler.New(scheduler.Config{Logger: log, Clock: clock})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. OPTIONAL SINKS
	// ─────────────────────────────────────────────────────────────────────────
	sinks, cleanup, err := connectSinks(ctx, cfg, registry, sched, health, log)
	defer func() {
		// Drain in-flight deliveries before the sink connections go away.
		if err := sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			log.Warn("scheduler stop failed", zap.Error(err))
		}
		if err := bus.Close(); err != nil {
			log.Warn("event bus close failed", zap.Error(err))
		}
		cleanup()
	}()
	if err != nil {
		return err
	}
	if err := eventhandler.Register(bus, sinks); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, httpapi.Dependencies{
		Profiles:   registry,
		Dashboard:  query.NewGetDashboardHandler(registry, clock),
		Health:     health,
		BusMetrics: bus.Metrics(),
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}
	errCh := srv.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	log.Info("wellness hub stopped", zap.Int("profiles", registry.Len()))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SINK WIRING
// ══════════════════════════════════════════════════════════════════════════════

// connectSinks connects every sink enabled by feature flags. The returned
// cleanup is always non-nil and closes whatever was opened.
func connectSinks(
	ctx context.Context,
	cfg *config.Config,
	registry *store.Registry,
	sched *scheduler.Scheduler,
	health *handlers.CompositeHealthChecker,
	log *zap.Logger,
) (eventhandler.Handlers, func(), error) {
	var (
		h       eventhandler.Handlers
		routes  []eventhandler.Route
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	breaker := func(name string) *circuitbreaker.Breaker {
		return circuitbreaker.New(name, circuitbreaker.Config{
			FailureThreshold: cfg.Sinks.BreakerFailureThreshold,
			Cooldown:         cfg.Sinks.BreakerCooldown,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.Warn("sink breaker state changed",
					zap.String("sink", name), zap.Stringer("from", from), zap.Stringer("to", to))
			},
		})
	}

	if cfg.Features.IsEnabled(config.FeatureSinkSnapshotCache) {
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			SnapshotTTL:  cfg.Redis.SnapshotTTL,
		})
		if err != nil {
			return h, cleanup, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		health.AddCheck("redis", redisPing(client))

		cache := redis.NewSnapshotCache(client, cfg.Redis.KeyPrefix, cfg.Redis.SnapshotTTL)
		h.ProfileChanged = eventhandler.NewOnProfileChangedHandler(cache, retry.SnapshotCachePolicy(), log)

		if every := cfg.Redis.SnapshotResyncInterval; every > 0 {
			job := jobs.NewResyncSnapshotsJob(registry, cache, retry.SnapshotCachePolicy(), log)
			if err := sched.Register(job, scheduler.Every(every)); err != nil {
				return h, cleanup, fmt.Errorf("failed to schedule snapshot resync: %w", err)
			}
		}
		log.Info("snapshot cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.Features.IsEnabled(config.FeatureSinkNotificationArchive) {
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
		pgCfg.MinConns = int32(cfg.Database.MinConns)
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return h, cleanup, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, conn.Close)
		health.AddCheck("postgres", handlers.NewPingCheck(conn))

		migrator := postgres.NewMigrator(conn)
		if cfg.Database.AutoMigrate {
			if err := migrator.Migrate(ctx); err != nil {
				return h, cleanup, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		migrations, err := migrator.Status(ctx)
		if err != nil {
			return h, cleanup, fmt.Errorf("failed to read migration status: %w", err)
		}
		for _, m := range migrations {
			if !m.IsApplied {
				log.Warn("migration pending", zap.Int("version", m.Version), zap.String("name", m.Name))
				continue
			}
			log.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name), zap.Time("applied_at", m.AppliedAt))
		}

		routes = append(routes, eventhandler.Route{
			Channel: postgres.NewNotificationArchive(conn),
			Policy:  retry.ArchivePolicy(),
			Breaker: breaker("archive"),
		})
		log.Info("notification archive enabled", zap.String("addr", pgCfg.Addr()))
	}

	if cfg.Features.IsEnabled(config.FeatureSinkNotificationRelay) {
		url := cfg.NATS.URL
		if cfg.NATS.Embedded {
			ns, err := messaging.StartEmbeddedNATS(cfg.NATS.EmbeddedHost, cfg.NATS.EmbeddedPort, log)
			if err != nil {
				return h, cleanup, fmt.Errorf("failed to start embedded nats: %w", err)
			}
			closers = append(closers, func() { shutdownNATS(ns) })
			url = ns.ClientURL()
		}

		nc, err := messaging.ConnectNATS(url, cfg.NATS.ClientName, log)
		if err != nil {
			return h, cleanup, fmt.Errorf("failed to connect to nats: %w", err)
		}
		closers = append(closers, func() { _ = nc.Drain() })
		health.AddCheck("nats", natsStatus(nc))

		routes = append(routes, eventhandler.Route{
			Channel: messaging.NewNotificationRelay(nc),
			Policy:  retry.RelayPolicy(),
			Breaker: breaker("relay"),
		})
		log.Info("notification relay enabled", zap.String("url", url))
	}

	if len(routes) > 0 {
		h.NotificationRaised = eventhandler.NewOnNotificationRaisedHandler(routes, log)
	}
	return h, cleanup, nil
}

func redisPing(client *goredis.Client) handlers.HealthCheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func natsStatus(nc *nats.Conn) handlers.HealthCheckFunc {
	return func(context.Context) error {
		if status := nc.Status(); status != nats.CONNECTED {
			return fmt.Errorf("nats connection %s", status)
		}
		return nil
	}
}

func shutdownNATS(ns *server.Server) {
	ns.Shutdown()
	ns.WaitForShutdown()
}
