package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"qrlinks/internal/config"
	"qrlinks/internal/db"
	"qrlinks/internal/geoip"
	"qrlinks/internal/jobs"
	"qrlinks/internal/metrics"
	"qrlinks/internal/scans"
	"qrlinks/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("migrations completed")

	metrics.Init(database)

	locator := geoip.NewResolver(geoip.Config{
		PrimaryURL:      cfg.GeoPrimaryURL,
		SecondaryURL:    cfg.GeoSecondaryURL,
		ProviderTimeout: cfg.GeoTimeout,
		EchoTimeout:     cfg.IPEchoTimeout,
		Logger:          log,
	})

	recorder := scans.NewRecorder(database, locator, log, cfg.ScanWorkers)
	recorder.Start()
	defer recorder.Stop()

	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	sweeper := jobs.NewInvitationSweeper(database, cfg.InvitationSweep, log)
	go sweeper.Start(sweeperCtx)

	srv := server.New(cfg, log)
	if err := srv.RegisterRoutes(ctx, database, recorder); err != nil {
		log.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server exited")
}
