package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/homescout/api/internal/database"
	"github.com/homescout/api/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	// searchPageSize caps the number of rows a search returns.
	searchPageSize = 10
	// storedMediaCount caps the media slice fetched per listing.
	storedMediaCount = 5
	// cityLimit caps the city aggregate.
	cityLimit = 20
)

// ListingRepository defines the interface for listing data access operations.
type ListingRepository interface {
	// UpsertListings writes a batch of listings in one transaction. The
	// conflict target is listing_key and every mutable field is overwritten
	// with the incoming value (last-write-wins). On error the whole batch is
	// rolled back; no row-level partial commit.
	UpsertListings(ctx context.Context, listings []models.Listing) error

	// InsertMedia appends media rows in one transaction, independent of any
	// listing transaction. Conflicts are ignored.
	InsertMedia(ctx context.Context, media []models.Media) error

	// Search returns listings matching the conjunction of the supplied
	// predicates, ordered by price descending, capped at the page size.
	// Query execution errors propagate to the caller.
	Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error)

	// MediaForListing returns the listing's media ordered primary-first then
	// by ascending display order, capped at a small fixed count.
	MediaForListing(ctx context.Context, listingKey string) ([]models.Media, error)

	// GetByKey returns a single listing, or nil, nil when absent.
	GetByKey(ctx context.Context, listingKey string) (*models.Listing, error)

	// AvailableCities returns distinct non-null cities with listing counts
	// and price spread, ordered by count descending, capped at the top N.
	AvailableCities(ctx context.Context) ([]models.CityCount, error)

	// RebuildCities truncates and reinserts the derived cities table from
	// the distinct non-null cities in the listings table.
	RebuildCities(ctx context.Context) error
}

// listingRepository is the concrete implementation of ListingRepository.
type listingRepository struct {
	db *database.Database
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(db *database.Database) ListingRepository {
	return &listingRepository{
		db: db,
	}
}

const upsertListingSQL = `
	INSERT INTO listings (
		listing_key, unparsed_address, city, state_province, postal_code,
		list_price, standard_status, property_type, property_subtype,
		bedrooms, bathrooms, year_built, public_remarks, last_updated, fetched_at
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	ON CONFLICT (listing_key) DO UPDATE SET
		unparsed_address = EXCLUDED.unparsed_address,
		city             = EXCLUDED.city,
		state_province   = EXCLUDED.state_province,
		postal_code      = EXCLUDED.postal_code,
		list_price       = EXCLUDED.list_price,
		standard_status  = EXCLUDED.standard_status,
		property_type    = EXCLUDED.property_type,
		property_subtype = EXCLUDED.property_subtype,
		bedrooms         = EXCLUDED.bedrooms,
		bathrooms        = EXCLUDED.bathrooms,
		year_built       = EXCLUDED.year_built,
		public_remarks   = EXCLUDED.public_remarks,
		last_updated     = EXCLUDED.last_updated,
		fetched_at       = EXCLUDED.fetched_at
`

// UpsertListings queues one upsert per listing into a pgx batch and executes
// it inside a single transaction, so a failed batch leaves no partial rows.
// There is no guard against out-of-order replay: an older batch applied after
// a newer one overwrites the newer values.
func (r *listingRepository) UpsertListings(ctx context.Context, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(upsertListingSQL,
			l.ListingKey,
			l.UnparsedAddress,
			l.City,
			l.StateProvince,
			l.PostalCode,
			l.ListPrice,
			l.StandardStatus,
			l.PropertyType,
			l.PropertySubType,
			l.Bedrooms,
			l.Bathrooms,
			l.YearBuilt,
			l.PublicRemarks,
			l.LastUpdated,
			l.FetchedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range listings {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to upsert listing batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	return nil
}

const insertMediaSQL = `
	INSERT INTO media (
		listing_key, media_url, media_type, media_category,
		display_order, description, is_primary
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT DO NOTHING
`

// InsertMedia appends media rows in its own transaction. Without a
// uniqueness constraint on the natural key the conflict clause is inert, so
// re-fetching a listing's media can accumulate duplicate rows.
func (r *listingRepository) InsertMedia(ctx context.Context, media []models.Media) error {
	if len(media) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin media transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, m := range media {
		batch.Queue(insertMediaSQL,
			m.ListingKey,
			m.URL,
			m.Type,
			m.Category,
			m.DisplayOrder,
			m.Description,
			m.IsPrimary,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range media {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert media batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close media batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit media transaction: %w", err)
	}

	return nil
}

const listingColumns = `
	listing_key, unparsed_address, city, state_province, postal_code,
	list_price, standard_status, property_type, property_subtype,
	bedrooms, bathrooms, year_built, public_remarks, last_updated, fetched_at
`

// GetByKey returns the listing for the given key, or nil, nil when no such
// listing exists.
func (r *listingRepository) GetByKey(ctx context.Context, listingKey string) (*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `,
			(SELECT COUNT(*) FROM media m WHERE m.listing_key = l.listing_key) AS photo_count
		FROM listings l
		WHERE listing_key = $1
	`

	var listing models.Listing
	err := r.db.Pool.QueryRow(ctx, query, listingKey).Scan(
		&listing.ListingKey,
		&listing.UnparsedAddress,
		&listing.City,
		&listing.StateProvince,
		&listing.PostalCode,
		&listing.ListPrice,
		&listing.StandardStatus,
		&listing.PropertyType,
		&listing.PropertySubType,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&listing.YearBuilt,
		&listing.PublicRemarks,
		&listing.LastUpdated,
		&listing.FetchedAt,
		&listing.PhotoCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query listing %s: %w", listingKey, err)
	}

	return &listing, nil
}

// MediaForListing returns an ordered media slice: primary-flagged rows first,
// then ascending display order, capped at storedMediaCount.
func (r *listingRepository) MediaForListing(ctx context.Context, listingKey string) ([]models.Media, error) {
	query := `
		SELECT id, listing_key, media_url, media_type, media_category,
			display_order, description, is_primary
		FROM media
		WHERE listing_key = $1
		ORDER BY is_primary DESC, display_order
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, listingKey, storedMediaCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query media for listing %s: %w", listingKey, err)
	}
	defer rows.Close()

	var results []models.Media
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(
			&m.ID,
			&m.ListingKey,
			&m.URL,
			&m.Type,
			&m.Category,
			&m.DisplayOrder,
			&m.Description,
			&m.IsPrimary,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media rows: %w", err)
	}

	if results == nil {
		results = []models.Media{}
	}
	return results, nil
}

// AvailableCities groups non-null cities with counts and price spread,
// ordered by count descending, truncated to the top cityLimit entries.
func (r *listingRepository) AvailableCities(ctx context.Context) ([]models.CityCount, error) {
	query := `
		SELECT
			city,
			COUNT(*) AS property_count,
			MIN(list_price) AS min_price,
			MAX(list_price) AS max_price,
			AVG(list_price) AS avg_price
		FROM listings
		WHERE city IS NOT NULL
		GROUP BY city
		ORDER BY property_count DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, cityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query city aggregate: %w", err)
	}
	defer rows.Close()

	var results []models.CityCount
	for rows.Next() {
		var c models.CityCount
		if err := rows.Scan(&c.City, &c.Count, &c.MinPrice, &c.MaxPrice, &c.AvgPrice); err != nil {
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	if results == nil {
		results = []models.CityCount{}
	}
	return results, nil
}

// RebuildCities replaces the derived cities table wholesale. The rebuild is
// exclusive and non-incremental; it runs once at the end of a full sync.
func (r *listingRepository) RebuildCities(ctx context.Context) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cities transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE cities RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to truncate cities: %w", err)
	}

	insert := `
		INSERT INTO cities (name)
		SELECT DISTINCT city
		FROM listings
		WHERE city IS NOT NULL
	`
	if _, err := tx.Exec(ctx, insert); err != nil {
		return fmt.Errorf("failed to reinsert cities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cities transaction: %w", err)
	}

	return nil
}
