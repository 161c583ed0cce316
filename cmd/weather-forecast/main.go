package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/weather-forecast/internal/api/http"
	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/logger"
	"github.com/i474232898/weather-forecast/internal/metrics"
	"github.com/i474232898/weather-forecast/internal/recorder"
	"github.com/i474232898/weather-forecast/internal/scheduler"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/i474232898/weather-forecast/internal/weather/providers"
)

func main() {
	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to build logger")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider, err := providers.New(httpClient, providers.Settings{
		Name:              cfg.Provider,
		OpenWeatherAPIKey: cfg.OpenWeatherAPIKey,
		WeatherAPIKey:     cfg.WeatherAPIKey,
		GeocoderAPIKey:    cfg.GeocoderAPIKey,
		MaxRetries:        cfg.MaxRetries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build weather provider")
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Fetch cycle history is only persisted when a SQLite path is configured.
	var history recorder.Recorder = recorder.NewNoopRecorder()
	var historyRoutes recorder.Recorder
	if cfg.SQLitePath != "" {
		sqliteRec, err := recorder.NewSQLiteRecorder(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open sqlite recorder")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite recorder opened")
		history = sqliteRec
		historyRoutes = sqliteRec
	}
	defer history.Close()

	promRecorder := metrics.New()

	service := weather.NewService(memStore, provider,
		weather.WithRecorder(history),
		weather.WithMetrics(promRecorder),
		weather.WithLogger(log.With().Str("component", "service").Logger()),
	)

	// Refreshes configured locations on start and then periodically.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service, log.With().Str("component", "scheduler").Logger())
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := newApp(service, promRecorder, historyRoutes, cfg.HTTPTimeout)

	go func() {
		log.Info().Str("port", cfg.Port).Str("provider", provider.Name()).Msg("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// newApp builds the Fiber app with health, metrics and API routes.
func newApp(service *weather.Service, promRecorder *metrics.Recorder, history recorder.Recorder, httpTimeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          httpTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-forecast",
			"provider": service.ProviderName(),
			"inFlight": service.InFlight(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promRecorder.Handler()))

	httpapi.RegisterRoutes(app, service, history)
	return app
}
