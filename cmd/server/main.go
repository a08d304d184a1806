package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/saeid-a/ClinicAgendaBack/internal/config"
	"github.com/saeid-a/ClinicAgendaBack/internal/database"
	"github.com/saeid-a/ClinicAgendaBack/internal/middleware"
	"github.com/saeid-a/ClinicAgendaBack/internal/notification"
	"github.com/saeid-a/ClinicAgendaBack/internal/routes"
	agendaws "github.com/saeid-a/ClinicAgendaBack/internal/websocket"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLog := logger.New(cfg.LogLevel)
	serverLog := appLog.WithComponent("server")

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		serverLog.Fatal("DB_URL is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, cfg.DBUrl, database.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}, appLog); err != nil {
		serverLog.WithError(err).Fatal("failed to connect to database")
	}
	defer database.CloseDB()

	// 3. Background workers
	dispatcher := notification.NewDispatcher(cfg.NotifyWorkers, cfg.NotifyQueueSize, appLog)
	hub := agendaws.NewHub(appLog)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// 4. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               "clinic-agenda",
		DisableStartupMessage: cfg.AppEnv == "production",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())
	app.Use(middleware.Metrics())

	if err := routes.RegisterRoutes(app, routes.Dependencies{
		Config:     cfg,
		DB:         database.DB,
		Log:        appLog,
		Hub:        hub,
		Dispatcher: dispatcher,
	}); err != nil {
		serverLog.WithError(err).Fatal("failed to register routes")
	}

	// 5. Start Server
	serveErr := make(chan error, 1)
	go func() {
		serverLog.WithField("port", cfg.Port).Info("server starting")
		serveErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			serverLog.WithError(err).Error("server stopped")
		}
	case <-ctx.Done():
		serverLog.Info("shutdown signal received")
	}

	// HTTP first so no new work is enqueued, then drain side effects.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		serverLog.WithError(err).Warn("http shutdown")
	}
	stopHub()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		serverLog.WithError(err).Warn("notification queue not fully drained")
	}
	serverLog.Info("server stopped")
}
