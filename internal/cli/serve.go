package cli

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/bloom/internal/api"
	"github.com/terraincognita07/bloom/internal/config"
	"github.com/terraincognita07/bloom/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config, slogger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily digest scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, slogger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	secretKey, err := cfg.ResolveSecretKey()
	if err != nil {
		return err
	}

	runtime, err := openRuntime(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := runtime.Close(context.Background()); closeErr != nil {
			log.Printf("store close failed: %v", closeErr)
		}
	}()

	handler, err := api.NewHandler(secretKey, cfg.Location, api.Dependencies{
		Summary:   runtime.Summary,
		Dashboard: runtime.Dashboard,
		Insights:  runtime.Insights,
		Logs:      runtime.Logs,
		Chats:     runtime.Chats,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Bloom",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)

	var digests *scheduler.Scheduler
	if cfg.DigestSchedule != "" {
		digests, err = scheduler.New(cfg.DigestSchedule, cfg.Location, runtime.Digest, slogger)
		if err != nil {
			return err
		}
		digests.Start()
		log.Printf("daily digest scheduled (%s, next run %s)", cfg.DigestSchedule, digests.Next().Format(time.RFC3339))
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if digests != nil {
			digests.Stop(shutdownCtx)
		}
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Bloom listening on http://0.0.0.0:%s (driver: %s, tz: %s)", cfg.Port, cfg.DBDriver, cfg.Location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
