package main

import (
	"context"
	"fmt"
	"os"

	"github.com/homescout/api/internal/catalog"
	"github.com/homescout/api/internal/config"
	"github.com/homescout/api/internal/database"
	"github.com/homescout/api/internal/ingest"
	"github.com/homescout/api/internal/logger"
	"github.com/homescout/api/internal/repository"
)

// The sync job mirrors the remote catalog into the local store. It is a
// one-shot batch run; only one instance may run at a time, which the caller
// (cron, operator) must enforce.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting catalog sync", map[string]interface{}{
		"page_size":   cfg.Catalog.PageSize,
		"total_limit": cfg.Catalog.TotalLimit,
		"fetch_media": cfg.Catalog.FetchMedia,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Failed to provision schema", err, nil)
	}

	store := repository.NewListingRepository(db)
	fetcher := catalog.NewClient(cfg.Catalog, log)
	coordinator := ingest.NewCoordinator(fetcher, store, log, cfg.Catalog.PageSize, cfg.Catalog.FetchMedia)

	stats, err := coordinator.Run(ctx, cfg.Catalog.TotalLimit)
	if err != nil {
		log.Fatal("Sync run failed", err, map[string]interface{}{
			"pages":    stats.Pages,
			"listings": stats.Listings,
		})
	}

	log.Info("Catalog sync finished", map[string]interface{}{
		"pages":        stats.Pages,
		"listings":     stats.Listings,
		"media":        stats.MediaRecords,
		"failed_pages": stats.FailedPages,
	})
}
