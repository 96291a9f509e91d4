package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photojournal/docs"
	"photojournal/internal/app"
	"photojournal/internal/config"
	handlers "photojournal/internal/http/handler"
	"photojournal/internal/http/middleware"
	"photojournal/internal/idgen"
	"photojournal/internal/location"
	"photojournal/internal/logging"
	"photojournal/internal/notify"
	"photojournal/internal/otel"
	"photojournal/internal/repository/blob"
	"photojournal/internal/service"
)

// @title Photo Journal API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err.Error())
		os.Exit(1)
	}

	backend, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open backend", "error", err.Error())
		os.Exit(1)
	}
	defer backend.Close()

	geocoder, err := location.NewNominatim(cfg.Geocoder)
	if err != nil {
		logger.Error("failed to initialize geocoder", "error", err.Error())
		os.Exit(1)
	}

	var notifier notify.Service = notify.NewLogService(cfg.Notification.Enabled, logger)
	if cfg.Notification.Enabled && cfg.Notification.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Notification.WebhookURL, cfg.Notification.Timeout)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Error("failed to register http metrics", "error", err.Error())
		os.Exit(1)
	}
	pipelineMetrics, err := service.NewPipelineMetrics(reg)
	if err != nil {
		logger.Error("failed to register pipeline metrics", "error", err.Error())
		os.Exit(1)
	}

	// Initialize repositories and services
	entries := blob.NewEntryBlob(backend.KV, logger)
	captureSvc := service.NewCaptureService(service.PipelineDeps{
		IDs:      idgen.New(nil),
		Resolver: location.NewResolver(geocoder, cfg.Geocoder.LocationTimeout),
		Entries:  entries,
		Notifier: notify.NewDispatcher(notifier, cfg.Notification.Timeout, logger),
		Photos:   backend.Photos,
		Metrics:  pipelineMetrics,
		Logger:   logger,
	})

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    20 * 1024 * 1024,
	})

	// Register global middleware
	fiberApp.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	fiberApp.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	fiberApp.Use(middleware.Logger(logger))
	fiberApp.Use(httpMetrics.Handler())

	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(fiberApp, handlers.Services{
		Health:      backend.KV,
		Entries:     service.NewEntryService(entries, backend.Photos, logger),
		Capture:     captureSvc,
		Preferences: service.NewPreferencesService(backend.KV),
		Photos: handlers.PhotoStore{
			Objects: backend.Photos,
			Prefix:  cfg.Photo.Prefix,
			LinkTTL: cfg.Photo.LinkTTL,
		},
	})

	// Swagger UI with dynamic host and scheme
	fiberApp.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		_ = fiberApp.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr)
	if err := fiberApp.Listen(addr); err != nil {
		logger.Error("failed to start server", "error", err.Error())
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Notification.Timeout)
	defer cancel()
	if err := captureSvc.Wait(drainCtx); err != nil {
		logger.Warn("pending notifications abandoned", "error", err.Error())
	}
	if err := shutdownTracing(drainCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err.Error())
	}
}
