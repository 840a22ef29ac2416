package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/skycast-app/skycast/internal/api/http"
	"github.com/skycast-app/skycast/internal/app"
	"github.com/skycast-app/skycast/internal/config"
	"github.com/skycast-app/skycast/internal/forecast"
	"github.com/skycast-app/skycast/internal/geo"
	"github.com/skycast-app/skycast/internal/owm"
	"github.com/skycast-app/skycast/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable preference store (theme, saved places).
	kv, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open preference store: %v", err)
	}
	defer kv.Close()
	prefs := store.NewPrefs(kv)

	// Provider client and the two adapter layers on top of it.
	client := owm.New(cfg.OpenWeatherAPIKey, httpClient)
	places := geo.NewAdapter(client, cfg.DefaultCountry)
	forecasts := forecast.NewService(client)

	// Orchestrator. The server environment has no geolocation capability;
	// useMyLocation reports unavailable.
	ctrl := app.NewController(places, forecasts, prefs, nil, cfg.GeolocationTimeout)

	// Basic app configuration
	fapp := fiber.New(fiber.Config{
		AppName:               "skycast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	// Global middleware
	fapp.Use(logger.New())
	fapp.Use(recover.New())
	fapp.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Basic health endpoint
	fapp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skycast",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(fapp, places, forecasts, ctrl)

	go func() {
		if err := fapp.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fapp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
