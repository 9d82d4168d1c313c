package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms-portal/internal/di"
	lmsconfig "lms-portal/internal/lms/config"
	portalconfig "lms-portal/internal/portal/config"
	sessionconfig "lms-portal/internal/session/config"
	"lms-portal/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port string `env:"SERVER_PORT" envDefault:"3000"`
}

func main() {
	fmt.Println("🚀 LMS Portal - Starting Application...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()

	sessionCfg, err := sessionconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load session configuration: %v", err)
	}
	lmsCfg, err := lmsconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load LMS API configuration: %v", err)
	}
	portalCfg, err := portalconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load portal configuration: %v", err)
	}
	appLogger.WithFields(map[string]interface{}{
		"session_backend": sessionCfg.Backend,
		"lms_api":         lmsCfg.BaseURL,
	}).Info("Application configuration loaded successfully")

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.InitializeSession(ctx, sessionCfg); err != nil {
		appLogger.Fatalf("Failed to initialize Session module: %v", err)
	}
	if err := container.InitializePortal(lmsCfg, portalCfg); err != nil {
		appLogger.Fatalf("Failed to initialize Portal module: %v", err)
	}
	appLogger.Info("Session and portal modules initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "LMS Portal v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			appLogger.WithContext(c.UserContext()).WithError(err).Error("HTTP Error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	app.Use(recover.New())

	// Health check sits ahead of the portal so it needs no client session
	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.WithError(err).Error("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "Session storage is unavailable",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "LMS Portal is running",
			"timestamp": time.Now().UTC(),
			"modules": fiber.Map{
				"session": sessionCfg.Backend,
				"portal":  "initialized",
			},
		})
	})

	container.GetPortalModule().RegisterRoutes(app)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("🌟 All modules initialized. Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed to start: %v", err)
			return
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)
		fmt.Println("🛑 Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}

	fmt.Println("✅ Application stopped gracefully.")
}
