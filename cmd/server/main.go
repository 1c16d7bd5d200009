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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Parley/internal/adapters/auth"
	router "github.com/dkeye/Parley/internal/adapters/http"
	"github.com/dkeye/Parley/internal/adapters/lastseen"
	"github.com/dkeye/Parley/internal/adapters/membership"
	wsignal "github.com/dkeye/Parley/internal/adapters/signal"
	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	var members core.Membership = membership.Open{}
	if cfg.Membership.Driver == "postgres" {
		pg, err := membership.NewPostgres(ctx, cfg.Membership.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		members = pg
	}

	var seen core.LastSeenStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		seen = lastseen.NewRedis(rdb, cfg.Redis.LastSeenTTL)
	}

	var resolver *auth.JWTResolver
	if cfg.Auth.JWTSecret != "" {
		resolver = auth.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	registry := app.NewRegistry(cfg.Presence.MaxConnectionsPerUser)
	calls := app.NewCallStore(cfg.Calls.HistorySize)
	limiter := app.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)

	promReg := metrics.NewRegistry()
	metrics.RegisterGauges(promReg, metrics.Gauges{
		Users:       func() float64 { return float64(registry.Stats().Users) },
		Connections: func() float64 { return float64(registry.Stats().Connections) },
		Rooms:       func() float64 { return float64(registry.Stats().Rooms) },
		ActiveCalls: func() float64 { return float64(calls.ActiveCount()) },
	})

	hub := wsignal.NewHub()
	o := &orch.Orchestrator{
		Registry:   registry,
		Calls:      calls,
		Limiter:    limiter,
		Policy:     app.SimplePolicy{},
		Membership: members,
		LastSeen:   seen,
		Transport:  hub,
		Metrics:    metrics.New(promReg),
	}

	ctl := wsignal.NewSignalWSController(o, hub)
	ctl.ReadLimit = cfg.ReadLimit
	ctl.PingPeriod = cfg.PingPeriod
	ctl.PongWait = cfg.PongWait()
	ctl.SendBuffer = cfg.SendBuffer

	sweeper := app.NewSweeper(calls, limiter, cfg.Calls.SweepInterval, cfg.Calls.MaxAge)
	sweeper.OnExpired(o.NotifyExpired)

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:     o,
		Signal:   ctl,
		Auth:     resolver,
		Gatherer: promReg,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Parley signaling server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
