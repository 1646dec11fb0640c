package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/config"
	casesHandler "github.com/jwalitptl/shc-api/internal/handler/cases"
	catalogHandler "github.com/jwalitptl/shc-api/internal/handler/catalog"
	"github.com/jwalitptl/shc-api/internal/handler/health"
	promhandler "github.com/jwalitptl/shc-api/internal/handler/prometheus"
	"github.com/jwalitptl/shc-api/internal/handler/sheets"
	"github.com/jwalitptl/shc-api/internal/handler/summary"
	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/internal/repository/memory"
	"github.com/jwalitptl/shc-api/internal/router"
	"github.com/jwalitptl/shc-api/internal/service/casebook"
	"github.com/jwalitptl/shc-api/internal/service/event"
	"github.com/jwalitptl/shc-api/internal/service/exam"
	"github.com/jwalitptl/shc-api/internal/service/report"
	"github.com/jwalitptl/shc-api/internal/service/sheet"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/messaging/redis"
	"github.com/jwalitptl/shc-api/pkg/metrics"
	"github.com/jwalitptl/shc-api/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level)})
	log.Logger = appLogger.Zerolog()
	if cfg.File != "" {
		log.Info().Str("file", cfg.File).Msg("configuration loaded")
	}

	// Catalog
	reg, err := catalog.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build hazard catalog")
	}
	for _, ref := range reg.Malformed() {
		log.Warn().Str("reference", ref).Msg("reference range not understood, values are never flagged")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry, cfg.Metrics.Namespace)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Message broker
	var publisher event.Publisher = event.NopPublisher{}
	deps := map[string]health.Pinger{}
	if cfg.Redis.Enabled {
		broker, err := redis.NewRedisBroker(ctx, cfg.Redis.BrokerConfig(), log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()

		publisher = event.NewBrokerPublisher(broker, cfg.Redis.ChannelPrefix, m, appLogger)
		if p, ok := broker.(health.Pinger); ok {
			deps["redis"] = p
		}
	}

	validate, err := validator.New(func(code string) bool {
		_, ok := reg.Panel(code)
		return ok
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize validator")
	}

	// Initialize services
	caseBook := casebook.NewService(memory.NewCaseRepository(), reg, publisher, m, appLogger)
	examSvc := exam.NewService(reg, caseBook, validate)
	sheetSvc := sheet.NewService(reg, caseBook, publisher, m, appLogger, cfg.Cache.TemplateTTL)
	reportSvc := report.NewService(reg, report.Config{
		FontPath:   cfg.Report.FontPath,
		FontFamily: cfg.Report.FontFamily,
		ClinicName: cfg.Report.ClinicName,
	}, m, appLogger)
	if cfg.Report.FontPath == "" {
		log.Info().Msg("no report font configured, reports are served as printable HTML")
	}

	// Setup router
	gin.SetMode(cfg.Server.Mode)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins

	sizeLimit := middleware.DefaultSizeLimitConfig()
	sizeLimit.MaxUploadSize = cfg.Server.MaxUploadBytes
	sizeLimit.UploadPaths = []string{"/api/v1/sheets/import"}

	routerConfig := router.RouterConfig{
		CORSConfig:     corsConfig,
		SizeLimit:      sizeLimit,
		SecurityConfig: middleware.DefaultSecurityConfig(),
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	var metricsHandler *promhandler.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhandler.New(registry, cfg.Metrics.Namespace)
		routerConfig.MetricsPath = cfg.Metrics.Path
	}

	r := router.NewRouter(routerConfig, metricsHandler,
		health.NewHandler(deps),
		catalogHandler.NewHandler(reg, validate, cfg.Cache.CatalogTTL),
		casesHandler.NewHandler(examSvc, caseBook, reportSvc),
		summary.NewHandler(reg, caseBook, reportSvc),
		sheets.NewHandler(sheetSvc),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
