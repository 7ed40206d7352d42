package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/cache"
	"github.com/BruksfildServices01/barber-agenda/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-agenda/internal/db"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/metrics"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/routes"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
	"github.com/BruksfildServices01/barber-agenda/internal/validators"
)

func main() {

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	timezone.SetDefault(cfg.DefaultTimezone)

	if err := validators.RegisterBindings(); err != nil {
		logger.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	db, err := dbpkg.NewDB(cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// ------------------------------
	// Redis (opcional)
	// ------------------------------
	var (
		availabilityCache cache.Cache = cache.NewNoop()
		limiter           middleware.Limiter
	)

	rdb := connectRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
		availabilityCache = cache.NewRedis(rdb, "agenda")
		limiter = middleware.NewRedisRateLimiter(rdb, cfg.RateLimitBookings, cfg.RateLimitWindow, "agenda:rl")
	} else {
		limiter = middleware.NewMemoryRateLimiter(cfg.RateLimitBookings, cfg.RateLimitWindow)
	}

	// ------------------------------
	// Métricas + auditoria
	// ------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dispatcher := audit.NewDispatcher(audit.New(db), logger)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, db, cfg, routes.Infra{
		Logger:   logger,
		Cache:    availabilityCache,
		Limiter:  limiter,
		Metrics:  metrics.NewBookingMetrics(reg),
		Gatherer: reg,
		Audit:    dispatcher,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	dispatcher.Close()
	logger.Info("server stopped")
}

// connectRedis returns nil when Redis is not configured or unreachable;
// the API then runs with no availability cache and an in-process limiter.
func connectRedis(cfg *config.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("redis disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, running without it", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return nil
	}

	logger.Info("redis connected", "addr", cfg.RedisAddr)
	return rdb
}
