package ingest

import (
	"time"

	"github.com/homescout/api/internal/catalog"
	"github.com/homescout/api/internal/models"
)

// Storage column width limits. These mirror the VARCHAR widths in the schema;
// incoming strings are truncated to fit rather than rejected.
const (
	maxListingKeyLen  = 50
	maxAddressLen     = 255
	maxCityLen        = 100
	maxStateLen       = 10
	maxPostalCodeLen  = 10
	maxStatusLen      = 50
	maxTypeLen        = 50
	maxSubTypeLen     = 100
	maxMediaURLLen    = 500
	maxMediaTypeLen   = 50
	maxCategoryLen    = 50
	maxDescriptionLen = 255
)

// truncate bounds an optional string to max runes not bytes, so multi-byte
// text is never cut mid-character. Nil passes through as nil.
func truncate(s *string, max int) *string {
	if s == nil {
		return nil
	}
	runes := []rune(*s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	return &cut
}

// truncateStr bounds a required string the same way.
func truncateStr(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// sanitizeListing coerces a raw catalog record into a storable Listing:
// strings truncated to column widths, numeric and date fields passed through,
// absent optionals left nil. fetchedAt is the local ingestion timestamp.
func sanitizeListing(raw catalog.RawListing, fetchedAt time.Time) models.Listing {
	return models.Listing{
		ListingKey:      truncateStr(raw.ListingKey, maxListingKeyLen),
		UnparsedAddress: truncate(raw.UnparsedAddress, maxAddressLen),
		City:            truncate(raw.City, maxCityLen),
		StateProvince:   truncate(raw.StateOrProvince, maxStateLen),
		PostalCode:      truncate(raw.PostalCode, maxPostalCodeLen),
		ListPrice:       raw.ListPrice,
		StandardStatus:  truncate(raw.StandardStatus, maxStatusLen),
		PropertyType:    truncate(raw.PropertyType, maxTypeLen),
		PropertySubType: truncate(raw.PropertySubType, maxSubTypeLen),
		Bedrooms:        raw.BedroomsTotal,
		Bathrooms:       raw.BathroomsTotalInteger,
		YearBuilt:       raw.YearBuilt,
		PublicRemarks:   raw.PublicRemarks,
		LastUpdated:     raw.ModificationTimestamp,
		FetchedAt:       fetchedAt,
	}
}

// sanitizeMedia coerces a raw media record for storage against its owning
// listing key.
func sanitizeMedia(raw catalog.RawMedia) models.Media {
	return models.Media{
		ListingKey:   truncateStr(raw.ResourceRecordKey, maxListingKeyLen),
		URL:          truncate(raw.MediaURL, maxMediaURLLen),
		Type:         truncate(raw.MediaType, maxMediaTypeLen),
		Category:     truncate(raw.MediaCategory, maxCategoryLen),
		DisplayOrder: raw.Order,
		Description:  truncate(raw.ShortDescription, maxDescriptionLen),
		IsPrimary:    raw.PreferredPhotoYN != nil && *raw.PreferredPhotoYN,
	}
}
