package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/homescout/api/internal/catalog"
	"github.com/homescout/api/internal/logger"
	"github.com/homescout/api/internal/models"
	"github.com/homescout/api/internal/repository"
)

// Coordinator drives the sync pipeline: paginated fetch, sanitize, batched
// upsert, media fan-out, and the city dimension rebuild at the end. One run
// is strictly sequential; concurrent runs are not safe and must be
// serialized by the caller.
type Coordinator struct {
	fetcher    catalog.Fetcher
	store      repository.ListingRepository
	log        *logger.Logger
	pageSize   int
	fetchMedia bool
}

// RunStats summarizes one sync run.
type RunStats struct {
	Pages        int
	Listings     int
	MediaRecords int
	FailedPages  int
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(fetcher catalog.Fetcher, store repository.ListingRepository, log *logger.Logger, pageSize int, fetchMedia bool) *Coordinator {
	return &Coordinator{
		fetcher:    fetcher,
		store:      store,
		log:        log,
		pageSize:   pageSize,
		fetchMedia: fetchMedia,
	}
}

// Run executes one full sync up to limit listings. The loop stops at the
// first empty page, which conflates true end-of-data with a remote failure;
// the client's diagnostics are the only way to tell them apart. A failed
// upsert loses that page's data and the run continues with the next page.
// Returns an error only when the final city rebuild fails.
func (c *Coordinator) Run(ctx context.Context, limit int) (*RunStats, error) {
	stats := &RunStats{}

	for skip := 0; skip < limit; skip += c.pageSize {
		raw := c.fetcher.FetchListings(ctx, c.pageSize, skip)
		if len(raw) == 0 {
			c.log.Info("Empty page, stopping pagination", map[string]interface{}{
				"skip": skip,
			})
			break
		}

		fetchedAt := time.Now().UTC()
		batch := make([]models.Listing, 0, len(raw))
		for _, r := range raw {
			batch = append(batch, sanitizeListing(r, fetchedAt))
		}

		if err := c.store.UpsertListings(ctx, batch); err != nil {
			// Batch-level isolation: this page's data is lost unless a
			// later full run repeats it.
			c.log.Error("Listing batch upsert failed, skipping page", err, map[string]interface{}{
				"skip": skip,
				"size": len(batch),
			})
			stats.FailedPages++
			continue
		}

		stats.Pages++
		stats.Listings += len(batch)

		if c.fetchMedia {
			keys := make([]string, 0, len(batch))
			for _, l := range batch {
				if l.ListingKey != "" {
					keys = append(keys, l.ListingKey)
				}
			}
			stats.MediaRecords += c.syncMedia(ctx, keys)
		}

		c.log.Info("Page ingested", map[string]interface{}{
			"skip":  skip,
			"size":  len(batch),
			"total": stats.Listings,
		})
	}

	// Exclusive, non-incremental rebuild of the derived city dimension.
	if err := c.store.RebuildCities(ctx); err != nil {
		return stats, fmt.Errorf("failed to rebuild cities: %w", err)
	}

	c.log.Info("Sync run complete", map[string]interface{}{
		"pages":        stats.Pages,
		"listings":     stats.Listings,
		"media":        stats.MediaRecords,
		"failed_pages": stats.FailedPages,
	})

	return stats, nil
}

// syncMedia fetches and inserts media for exactly the given keys. A media
// insert failure rolls back only the media transaction; the listing batch
// already committed stays.
func (c *Coordinator) syncMedia(ctx context.Context, keys []string) int {
	if len(keys) == 0 {
		return 0
	}

	raw := c.fetcher.FetchMedia(ctx, keys)
	if len(raw) == 0 {
		return 0
	}

	records := make([]models.Media, 0, len(raw))
	for _, r := range raw {
		records = append(records, sanitizeMedia(r))
	}

	if err := c.store.InsertMedia(ctx, records); err != nil {
		c.log.Error("Media batch insert failed", err, map[string]interface{}{
			"keys":    len(keys),
			"records": len(records),
		})
		return 0
	}

	return len(records)
}
