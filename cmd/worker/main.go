package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/shc-api/internal/config"
	"github.com/jwalitptl/shc-api/internal/handler/health"
	promhandler "github.com/jwalitptl/shc-api/internal/handler/prometheus"
	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/internal/worker"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/messaging/redis"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

// setupHealthCheck serves liveness, readiness and metrics for the worker.
func setupHealthCheck(port int, deps map[string]health.Pinger, registry *prometheus.Registry, namespace string) *http.Server {
	engine := gin.New()
	engine.Use(middleware.Recovery())

	metricsHandler := promhandler.New(registry, namespace)
	engine.Use(metricsHandler.Middleware())
	engine.GET("/metrics", metricsHandler.Handler())
	health.NewHandler(deps).RegisterRoutes(engine.Group(""))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level)})
	log.Logger = appLogger.Zerolog()

	if !cfg.Redis.Enabled {
		log.Fatal().Msg("the worker follows broker events; enable redis to run it")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redis.NewRedisBroker(ctx, cfg.Redis.BrokerConfig(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry, cfg.Metrics.Namespace)

	follower := worker.NewFollower(broker, worker.FollowerConfig{
		ChannelPrefix: cfg.Redis.ChannelPrefix,
		RetryAttempts: cfg.Worker.RetryAttempts,
		RetryDelay:    cfg.Worker.RetryDelay,
	}, appLogger, m)

	gin.SetMode(cfg.Server.Mode)
	deps := map[string]health.Pinger{}
	if p, ok := broker.(health.Pinger); ok {
		deps["redis"] = p
	}
	srv := setupHealthCheck(cfg.Worker.HealthPort, deps, registry, cfg.Metrics.Namespace)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down...")
		cancel()
	}()

	if err := follower.Start(ctx); err != nil {
		log.Error().Err(err).Msg("event follower failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server forced to shutdown")
	}
}
