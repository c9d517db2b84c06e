package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the listings, media and cities tables with their
// indexes. Statements are idempotent so the sync job can run them on every
// start. String column widths here are the widths the ingest sanitizer
// truncates to.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		listing_key       VARCHAR(50) PRIMARY KEY,
		unparsed_address  VARCHAR(255),
		city              VARCHAR(100),
		state_province    VARCHAR(10),
		postal_code       VARCHAR(10),
		list_price        DECIMAL(12, 2),
		standard_status   VARCHAR(50),
		property_type     VARCHAR(50),
		property_subtype  VARCHAR(100),
		bedrooms          INTEGER,
		bathrooms         INTEGER,
		year_built        INTEGER,
		public_remarks    TEXT,
		last_updated      TIMESTAMP,
		fetched_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		search_vector     tsvector GENERATED ALWAYS AS (
			to_tsvector('english',
				COALESCE(city, '') || ' ' ||
				COALESCE(unparsed_address, '') || ' ' ||
				COALESCE(public_remarks, '') || ' ' ||
				COALESCE(property_subtype, '')
			)
		) STORED
	)`,

	// No uniqueness constraint on (listing_key, media_url): repeated media
	// fetch for the same listing can accumulate duplicate rows.
	`CREATE TABLE IF NOT EXISTS media (
		id             SERIAL PRIMARY KEY,
		listing_key    VARCHAR(50) REFERENCES listings(listing_key) ON DELETE CASCADE,
		media_url      VARCHAR(500),
		media_type     VARCHAR(50),
		media_category VARCHAR(50),
		display_order  INTEGER,
		description    VARCHAR(255),
		is_primary     BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS cities (
		id   SERIAL PRIMARY KEY,
		name VARCHAR(100)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_listings_city      ON listings(city)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_price     ON listings(list_price)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_bedrooms  ON listings(bedrooms)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_bathrooms ON listings(bathrooms)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_search    ON listings USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS idx_media_listing      ON media(listing_key)`,
	`CREATE INDEX IF NOT EXISTS idx_media_order        ON media(listing_key, display_order)`,
}

// Migrate provisions the schema. It only creates objects; there is no
// support for evolving an existing schema.
func (db *Database) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
