package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/participant-map/internal/api/http"
	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/config"
	"github.com/i474232898/participant-map/internal/scheduler"
	"github.com/i474232898/participant-map/internal/store"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the participant map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if opts.dataPath != "" {
				cfg.DataPath = opts.dataPath
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.AppConfig) error {
	// In-memory snapshot store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Core service: dataset file -> aggregation -> snapshot.
	service := atlas.NewService(memStore, atlas.FileSource{Path: cfg.DataPath})

	// A broken dataset is served as an empty map, so the error is only logged.
	if _, err := service.Reload(context.Background()); err != nil {
		log.Printf("INFO: starting with an empty dataset: %v", err)
	}

	sched := scheduler.New(service, cfg.ReloadInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "participant-map",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.NewPresenter(service, cfg.Map))

	go func() {
		log.Printf("INFO: serving %s on :%s", cfg.DataPath, cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
