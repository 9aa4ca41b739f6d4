// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftboard/driftboard/internal/auth"
	authpg "github.com/driftboard/driftboard/internal/auth/postgres"
	"github.com/driftboard/driftboard/internal/auth/resetcache"
	"github.com/driftboard/driftboard/internal/cache"
	"github.com/driftboard/driftboard/internal/config"
	"github.com/driftboard/driftboard/internal/graphql"
	"github.com/driftboard/driftboard/internal/logging"
	"github.com/driftboard/driftboard/internal/mail"
	"github.com/driftboard/driftboard/internal/observability"
	"github.com/driftboard/driftboard/internal/posts"
	postpg "github.com/driftboard/driftboard/internal/posts/postgres"
	"github.com/driftboard/driftboard/internal/session"
	"github.com/driftboard/driftboard/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL API server",
		Long: `Start the HTTP server exposing the GraphQL API, backed by
PostgreSQL for persistent state and Redis for sessions and
password-reset tokens.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	cmd.Flags().String("server.addr", "", "HTTP listen address")
	cmd.Flags().String("server.metrics_addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("server.env", "", "environment (development or production)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("redis.url", "", "Redis connection URL")
	cmd.Flags().String("log.format", "", "log format (json or text)")

	return cmd
}

// ServeDeps contains injectable dependencies for the serve command. All nil
// fields use their default implementations.
type ServeDeps struct {
	// PoolFactory creates the database handle. Default: store.Connect.
	PoolFactory func(ctx context.Context, url string) (Pool, error)

	// CacheFactory creates the key-value cache. Default: cache.NewRedis.
	CacheFactory func(ctx context.Context, url string) (Cache, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer.
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Pool is the subset of pgxpool.Pool the serve command manages directly.
type Pool interface {
	store.DB
	Close()
}

// Cache is the subset of cache.Redis the serve command manages directly.
type Cache interface {
	cache.KeyValue
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, url string) (Pool, error) {
			return store.Connect(ctx, url)
		}
	}
	if deps.CacheFactory == nil {
		deps.CacheFactory = func(ctx context.Context, url string) (Cache, error) {
			return cache.NewRedis(ctx, url)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, rc observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, rc)
		}
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url (or DATABASE_URL) is required")
	}
	if cfg.Redis.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("redis.url (or REDIS_URL) is required")
	}

	logging.SetDefault("driftboard", version, cfg.Log.Format)
	logger := slog.Default()

	logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"env", cfg.Server.Env,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	kv, err := deps.CacheFactory(ctx, cfg.Redis.URL)
	if err != nil {
		return oops.Code("CACHE_CONNECT_FAILED").With("operation", "connect to cache").Wrap(err)
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			logger.Warn("failed to close cache client", "error", closeErr)
		}
	}()
	logger.Info("connected to cache")

	// Observability server first so the services can record metrics.
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Server.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, func() bool { return true })
		metrics = obsServer.Metrics()
	}

	var notifier auth.ResetNotifier
	if cfg.Mail.SMTPAddr != "" {
		notifier, err = mail.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.From)
		if err != nil {
			return err
		}
	} else {
		notifier = mail.NewLogMailer(logger)
	}

	authSvc, err := auth.NewService(
		authpg.NewUserRepository(pool),
		resetcache.NewStore(kv),
		auth.NewArgon2idHasher(),
		notifier,
		cfg.Auth.ResetURLBase,
		logger,
	)
	if err != nil {
		return err
	}

	postSvc, err := posts.NewService(postpg.NewPostRepository(pool), logger)
	if err != nil {
		return err
	}

	sessionCfg := session.Config{
		CookieName: cfg.Session.CookieName,
		Domain:     cfg.Session.Domain,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Production(),
	}
	if metrics != nil {
		sessionCfg.OnCreated = metrics.SessionsCreatedTotal.Inc
	}
	sessions, err := session.NewManager(kv, sessionCfg)
	if err != nil {
		return err
	}

	root, err := graphql.NewRoot(authSvc, postSvc, metrics, logger)
	if err != nil {
		return err
	}
	schema, err := graphql.NewSchema(root)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", sessions.Middleware(graphql.NewHandler(schema, metrics, logger)))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if obsServer != nil {
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(obsErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- serveErr
		}
	}()

	cmd.Println("Server started")
	logger.Info("server ready", "addr", cfg.Server.Addr)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case serveErr := <-errChan:
		return oops.Code("SERVER_FAILED").Wrap(serveErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown failed", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("observability server shutdown failed", "error", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// monitorServerErrors cancels the run context when a background server
// reports a fatal error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errChan <-chan error, name string) {
	select {
	case err, ok := <-errChan:
		if ok && err != nil {
			slog.Error("background server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
