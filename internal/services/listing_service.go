package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/homescout/api/internal/logger"
	"github.com/homescout/api/internal/models"
	"github.com/homescout/api/internal/repository"
)

const (
	// previewMediaCount is how many media URLs are surfaced to callers as
	// preview thumbnails out of the stored slice.
	previewMediaCount = 3
)

// Service-level errors
var (
	ErrInvalidFilter   = errors.New("invalid search filter")
	ErrListingNotFound = errors.New("listing not found")
)

// ListingResult is a listing with its ordered media slice and the preview
// thumbnail URLs derived from it.
type ListingResult struct {
	Listing     models.Listing `json:"listing"`
	Media       []models.Media `json:"media"`
	PreviewURLs []string       `json:"preview_urls"`
}

// ListingService defines the interface for listing search business logic.
type ListingService interface {
	// Search returns filtered listings with media attached.
	// Returns ErrInvalidFilter when the predicate set is inconsistent.
	// Query execution errors propagate; they are never converted into an
	// empty result.
	Search(ctx context.Context, filter models.SearchFilter) ([]ListingResult, error)

	// AvailableCities returns the top city aggregates.
	AvailableCities(ctx context.Context) ([]models.CityCount, error)

	// GetListing returns one listing with media.
	// Returns ErrListingNotFound when no listing has the key.
	GetListing(ctx context.Context, listingKey string) (*ListingResult, error)
}

// listingService is the concrete implementation of ListingService.
type listingService struct {
	repo repository.ListingRepository
	log  *logger.Logger
}

// NewListingService creates a new instance of ListingService.
func NewListingService(repo repository.ListingRepository, log *logger.Logger) ListingService {
	return &listingService{
		repo: repo,
		log:  log,
	}
}

// Search validates the filter, runs the store query, and attaches each
// result's ordered media slice plus preview URLs.
func (s *listingService) Search(ctx context.Context, filter models.SearchFilter) ([]ListingResult, error) {
	if err := validateFilter(filter); err != nil {
		s.log.Warn("Invalid search filter", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.log.Info("Searching listings", map[string]interface{}{
		"has_city":      filter.City != nil,
		"has_min_price": filter.MinPrice != nil,
		"has_max_price": filter.MaxPrice != nil,
		"has_bedrooms":  filter.Bedrooms != nil,
		"has_bathrooms": filter.Bathrooms != nil,
	})

	listings, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.log.Error("Search query failed", err, nil)
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	results := make([]ListingResult, 0, len(listings))
	for _, l := range listings {
		media, err := s.repo.MediaForListing(ctx, l.ListingKey)
		if err != nil {
			s.log.Error("Media lookup failed", err, map[string]interface{}{
				"listing_key": l.ListingKey,
			})
			return nil, fmt.Errorf("failed to load media for %s: %w", l.ListingKey, err)
		}
		results = append(results, ListingResult{
			Listing:     l,
			Media:       media,
			PreviewURLs: previewURLs(media),
		})
	}

	s.log.Info("Search complete", map[string]interface{}{
		"count": len(results),
	})

	return results, nil
}

// AvailableCities returns the city aggregates from the store.
func (s *listingService) AvailableCities(ctx context.Context) ([]models.CityCount, error) {
	cities, err := s.repo.AvailableCities(ctx)
	if err != nil {
		s.log.Error("City aggregate query failed", err, nil)
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}
	return cities, nil
}

// GetListing returns a single listing with its media slice.
func (s *listingService) GetListing(ctx context.Context, listingKey string) (*ListingResult, error) {
	listing, err := s.repo.GetByKey(ctx, listingKey)
	if err != nil {
		s.log.Error("Listing lookup failed", err, map[string]interface{}{
			"listing_key": listingKey,
		})
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	media, err := s.repo.MediaForListing(ctx, listingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load media for %s: %w", listingKey, err)
	}

	return &ListingResult{
		Listing:     *listing,
		Media:       media,
		PreviewURLs: previewURLs(media),
	}, nil
}

// validateFilter rejects inconsistent predicate sets. Absent predicates are
// always valid.
func validateFilter(f models.SearchFilter) error {
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return fmt.Errorf("%w: min_price must be non-negative", ErrInvalidFilter)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: max_price must be non-negative", ErrInvalidFilter)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidFilter)
	}
	if f.Bedrooms != nil && *f.Bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms must be non-negative", ErrInvalidFilter)
	}
	if f.Bathrooms != nil && *f.Bathrooms < 0 {
		return fmt.Errorf("%w: bathrooms must be non-negative", ErrInvalidFilter)
	}
	return nil
}

// previewURLs returns the first previewMediaCount non-nil media URLs.
func previewURLs(media []models.Media) []string {
	urls := make([]string, 0, previewMediaCount)
	for _, m := range media {
		if len(urls) == previewMediaCount {
			break
		}
		if m.URL != nil && *m.URL != "" {
			urls = append(urls, *m.URL)
		}
	}
	return urls
}
