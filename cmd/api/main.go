package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/geocoder89/jobtrail/internal/auth"
	"github.com/geocoder89/jobtrail/internal/cache"
	"github.com/geocoder89/jobtrail/internal/config"
	"github.com/geocoder89/jobtrail/internal/db"
	httpx "github.com/geocoder89/jobtrail/internal/http"
	"github.com/geocoder89/jobtrail/internal/jobs"
	"github.com/geocoder89/jobtrail/internal/observability"
	"github.com/geocoder89/jobtrail/internal/users"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api stopped with error", "err", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "jobtrail-api",
			Endpoint:    cfg.OTELEndpoint,
			Env:         cfg.Env,
			SampleRatio: cfg.OTELSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	stores, err := db.OpenStores(ctx, cfg, prom)
	if err != nil {
		return err
	}
	defer stores.Close()
	log.Info("datastore ready", "store", stores.Kind)

	statsCache, closeCache, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	dir := users.NewDirectory(stores.Users)

	created, err := db.EnsureAdminUser(ctx, dir, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	var draining atomic.Bool

	router := httpx.NewRouter(httpx.Deps{
		Log:          log,
		Cfg:          cfg,
		Users:        dir,
		Jobs:         jobs.NewService(stores.Jobs, statsCache, log).WithCacheObserver(prom),
		JWT:          auth.NewManager(cfg.JWTSecret, cfg.AccessTTL()),
		Ping:         stores.Ping,
		ShuttingDown: draining.Load,
		Prom:         prom,
		Gatherer:     reg,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		draining.Store(true)
		log.Info("server shutting down")

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openCache picks Redis when configured, otherwise an in-process TTL cache.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.New(cfg.CacheTTL()), func() {}, nil
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL(),
		Prefix:   "jobtrail:",
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("stats cache backed by redis", "addr", cfg.RedisAddr)
	return rc, func() { _ = rc.Close() }, nil
}
