package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/canilaba/internal/api/http"
	"github.com/i474232898/canilaba/internal/config"
	"github.com/i474232898/canilaba/internal/logging"
	"github.com/i474232898/canilaba/internal/scheduler"
	"github.com/i474232898/canilaba/internal/store"
	"github.com/i474232898/canilaba/internal/telegram"
	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
	"github.com/i474232898/canilaba/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound Open-Meteo calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	openMeteo := providers.NewOpenMeteoProvider(httpClient, providers.OpenMeteoConfig{
		ForecastURL:  cfg.OpenMeteoURL,
		GeocodingURL: cfg.GeocodingURL,
		Timezone:     cfg.ForecastTimezone,
	})
	service := weather.NewService(openMeteo, log)

	userStore, closeStore := openUserStore(cfg, log)
	defer closeStore()

	ledger, closeLedger := openLedger(ctx, cfg, log)
	defer closeLedger()

	defaults := cfg.DefaultCoordinates()

	handler := telegram.NewHandler(telegram.Config{
		Username:           cfg.BotUsername,
		DefaultCoordinates: defaults,
		Location:           cfg.Location,
	}, userStore, service, openMeteo, log)

	if cfg.TelegramToken != "" {
		tg, err := telegram.NewBot(cfg.TelegramToken, handler)
		if err != nil {
			log.WithError(err).Fatal("failed to start telegram bot")
		}
		go tg.Run(ctx)
	} else {
		log.Warn("TELEGRAM_TOKEN is empty; chat commands and notifications are disabled")
	}

	// Daily laundry-day notifications.
	sched := scheduler.New(scheduler.Config{
		At:                 cfg.NotifyAt,
		Location:           cfg.Location,
		DefaultCoordinates: &defaults,
		Backoff: scheduler.BackoffConfig{
			MaxRetries:      cfg.NotifyRetries,
			InitialInterval: scheduler.DefaultBackoff.InitialInterval,
			MaxInterval:     scheduler.DefaultBackoff.MaxInterval,
		},
	}, userStore, service, handler, ledger, log)
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "canilaba",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "canilaba",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Forecaster: service,
		Users:      userStore,
		Location:   cfg.Location,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()
	log.WithField("port", cfg.Port).Info("canilaba started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}

func openUserStore(cfg *config.AppConfig, log *logrus.Logger) (users.Store, func()) {
	if cfg.StoreDriver == "memory" {
		log.Info("using in-memory user store")
		return store.NewMemoryStore(), func() {}
	}

	db, err := store.NewSQLite(cfg.SQLitePath, log)
	if err != nil {
		log.WithError(err).WithField("path", cfg.SQLitePath).Fatal("failed to open sqlite store")
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("failed to close sqlite store")
		}
	}
}

func openLedger(ctx context.Context, cfg *config.AppConfig, log *logrus.Logger) (scheduler.Ledger, func()) {
	if cfg.RedisURL == "" {
		return store.NewMemoryLedger(), func() {}
	}

	l, err := store.NewRedisLedger(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable; falling back to in-memory notification ledger")
		return store.NewMemoryLedger(), func() {}
	}
	return l, func() {
		if err := l.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis ledger")
		}
	}
}
