package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terraincognita07/bloom/internal/config"
	"github.com/terraincognita07/bloom/internal/db"
	"github.com/terraincognita07/bloom/internal/docstore"
	"github.com/terraincognita07/bloom/internal/flows"
	"github.com/terraincognita07/bloom/internal/services"
)

// healthStore is what a backing store must offer to serve the engine.
type healthStore interface {
	services.HealthStreamReader
	services.UserLister
	services.ChatDirectory
}

// Runtime wires one backing store into the services every command uses.
type Runtime struct {
	Summary   *services.SummaryService
	Dashboard *services.DashboardService
	Insights  *services.InsightService
	Digest    *services.DigestService
	// Logs and Chats are nil for read-only stores.
	Logs  *services.LogService
	Chats services.ChatLinker

	close func(ctx context.Context) error
}

func (runtime *Runtime) Close(ctx context.Context) error {
	if runtime.close == nil {
		return nil
	}
	return runtime.close(ctx)
}

func openRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	var (
		store    healthStore
		logs     *services.LogService
		chats    services.ChatLinker
		closeFn  func(ctx context.Context) error
		location = cfg.Location
	)

	switch cfg.DBDriver {
	case config.DriverMongo:
		mongoStore, err := docstore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open document store: %w", err)
		}
		store = mongoStore
		closeFn = mongoStore.Close
	default:
		database, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("open sql db: %w", err)
		}
		repos := db.NewRepositories(database)
		store = db.NewHealthStreams(repos)
		logs = services.NewLogService(repos.Cycles, repos.Symptoms, repos.Nutrition, repos.Fitness, repos.CheckIns, repos.LabResults, location)
		chats = repos.TelegramChats
		closeFn = func(context.Context) error { return sqlDB.Close() }
	}

	var invoker services.FlowInvoker
	if cfg.FlowsURL != "" {
		invoker = flows.NewClient(cfg.FlowsURL, cfg.FlowsTimeout)
	}

	var notifier services.Notifier = services.NewLogNotifier(logger)
	if cfg.TelegramEnabled() {
		notifier = services.NewTelegramNotifier(cfg.TelegramToken, store, notifier)
	}

	fetcher := services.NewWindowFetcher(store, logger)
	dashboard := services.NewDashboardService(fetcher, location)
	return &Runtime{
		Summary:   services.NewSummaryService(fetcher),
		Dashboard: dashboard,
		Insights:  services.NewInsightService(fetcher, invoker, location),
		Digest:    services.NewDigestService(store, dashboard, notifier, logger),
		Logs:      logs,
		Chats:     chats,
		close:     closeFn,
	}, nil
}
