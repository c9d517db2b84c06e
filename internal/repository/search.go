package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/homescout/api/internal/models"
)

// buildConditions turns the supplied predicates into a parameterized WHERE
// clause fragment and its argument list. An absent predicate contributes no
// condition; values are never interpolated into the query text.
func buildConditions(filter models.SearchFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.City != nil {
		args = append(args, "%"+*filter.City+"%")
		conditions = append(conditions, fmt.Sprintf("city ILIKE $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("list_price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("list_price <= $%d", len(args)))
	}
	if filter.Bedrooms != nil {
		args = append(args, *filter.Bedrooms)
		conditions = append(conditions, fmt.Sprintf("bedrooms = $%d", len(args)))
	}
	if filter.Bathrooms != nil {
		args = append(args, *filter.Bathrooms)
		conditions = append(conditions, fmt.Sprintf("bathrooms = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "TRUE", args
	}
	return strings.Join(conditions, " AND "), args
}

// Search builds a conjunction over the supplied predicates, orders by price
// descending, and caps at the fixed page size. Each row carries its photo
// count so presentation does not need a second round trip per listing.
func (r *listingRepository) Search(ctx context.Context, filter models.SearchFilter) ([]models.Listing, error) {
	where, args := buildConditions(filter)

	query := fmt.Sprintf(`
		SELECT `+listingColumns+`,
			(SELECT COUNT(*) FROM media m WHERE m.listing_key = l.listing_key) AS photo_count
		FROM listings l
		WHERE %s
		ORDER BY list_price DESC
		LIMIT %d
	`, where, searchPageSize)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}
	defer rows.Close()

	var results []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.ListingKey,
			&l.UnparsedAddress,
			&l.City,
			&l.StateProvince,
			&l.PostalCode,
			&l.ListPrice,
			&l.StandardStatus,
			&l.PropertyType,
			&l.PropertySubType,
			&l.Bedrooms,
			&l.Bathrooms,
			&l.YearBuilt,
			&l.PublicRemarks,
			&l.LastUpdated,
			&l.FetchedAt,
			&l.PhotoCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	if results == nil {
		results = []models.Listing{}
	}
	return results, nil
}
