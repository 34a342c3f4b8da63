package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carebus/carebus/internal/config"
	"github.com/carebus/carebus/internal/domain/directory"
	"github.com/carebus/carebus/internal/domain/emergency"
	"github.com/carebus/carebus/internal/domain/identity"
	"github.com/carebus/carebus/internal/domain/scheduling"
	"github.com/carebus/carebus/internal/platform/auth"
	"github.com/carebus/carebus/internal/platform/eventbus"
	"github.com/carebus/carebus/internal/platform/middleware"
	"github.com/carebus/carebus/internal/platform/sandbox"
	"github.com/carebus/carebus/internal/platform/telemetry"
	"github.com/carebus/carebus/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carebus-server",
		Short: "Clinical event coordination server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API and notification server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Metrics and event bus
	metrics := telemetry.New()
	bus := eventbus.New(
		eventbus.WithBuffer(cfg.EventBufferSize),
		eventbus.WithPublishHook(func(tag eventbus.Tag) {
			metrics.EventsPublished.WithLabelValues(string(tag)).Inc()
		}),
		eventbus.WithDropHook(func(tag eventbus.Tag) {
			metrics.EventsDropped.WithLabelValues(string(tag)).Inc()
		}),
	)

	// Token manager
	tokens := auth.NewManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authmw := auth.Middleware(tokens)

	// Repositories and services
	identitySvc := identity.NewService(identity.NewUserRepoMem(), tokens)
	directorySvc := directory.NewService(directory.NewDoctorRepoMem(), directory.NewHospitalRepoMem(), bus)
	schedulingSvc := scheduling.NewService(scheduling.NewAppointmentRepoMem(), bus)
	emergencySvc := emergency.NewService(emergency.NewCaseRepoMem(), bus)

	// Demo data
	if cfg.SeedDemoData {
		seeder := sandbox.New(identitySvc, directorySvc, 1, logger)
		if err := seeder.Run(context.Background(), cfg.SeedDoctorCount); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", scheduling.IdempotencyKeyHeader},
	}))

	// Notification gateway
	gateway := websocket.NewGateway(bus, logger,
		websocket.WithWriteTimeout(cfg.WSWriteTimeout),
		websocket.WithConnectionHooks(
			func() { metrics.ConnectedClients.Inc() },
			func() { metrics.ConnectedClients.Dec() },
		),
	)
	gateway.RegisterRoutes(e)

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"version":     "0.1.0",
			"wsClients":   gateway.ClientCount(),
			"subscribers": bus.SubscriberCount(),
		})
	})
	e.GET("/metrics", metrics.Handler())

	// API routes
	apiV1 := e.Group("/api/v1")
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1, authmw)
	directory.NewHandler(directorySvc).RegisterRoutes(apiV1, authmw)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1, authmw)
	emergency.NewHandler(emergencySvc).RegisterRoutes(apiV1, authmw)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
