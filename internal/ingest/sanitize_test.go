package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/homescout/api/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		max   int
		want  *string
	}{
		{"nil passes through", nil, 10, nil},
		{"short string untouched", strPtr("Toronto"), 100, strPtr("Toronto")},
		{"exact length untouched", strPtr("abc"), 3, strPtr("abc")},
		{"long string cut", strPtr("abcdef"), 3, strPtr("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.max)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestTruncate_MultiByte(t *testing.T) {
	// Truncation counts runes, never splitting a multi-byte character.
	in := strPtr("météo québécoise")
	got := truncate(in, 5)
	require.NotNil(t, got)
	assert.Equal(t, "météo", *got)
}

func TestSanitizeListing(t *testing.T) {
	now := time.Now().UTC()
	modified := now.Add(-24 * time.Hour)

	raw := catalog.RawListing{
		ListingKey:            "W1234567",
		UnparsedAddress:       strPtr("123 Main St, Toronto"),
		City:                  strPtr(strings.Repeat("x", 150)),
		StateOrProvince:       strPtr("Ontario Province"), // over the 10 char column
		PostalCode:            strPtr("M5V 2T6"),
		ListPrice:             floatPtr(899000),
		StandardStatus:        strPtr("Active"),
		PropertyType:          strPtr("Residential"),
		PropertySubType:       strPtr("Detached"),
		BedroomsTotal:         intPtr(3),
		BathroomsTotalInteger: intPtr(2),
		YearBuilt:             intPtr(1995),
		PublicRemarks:         strPtr("Charming home"),
		ModificationTimestamp: &modified,
	}

	listing := sanitizeListing(raw, now)

	assert.Equal(t, "W1234567", listing.ListingKey)
	require.NotNil(t, listing.City)
	assert.Len(t, *listing.City, 100)
	require.NotNil(t, listing.StateProvince)
	assert.Equal(t, "Ontario Pr", *listing.StateProvince)
	require.NotNil(t, listing.ListPrice)
	assert.Equal(t, 899000.0, *listing.ListPrice)
	require.NotNil(t, listing.Bedrooms)
	assert.Equal(t, 3, *listing.Bedrooms)
	require.NotNil(t, listing.LastUpdated)
	assert.Equal(t, modified, *listing.LastUpdated)
	assert.Equal(t, now, listing.FetchedAt)
}

func TestSanitizeListing_MissingOptionalsStayNil(t *testing.T) {
	raw := catalog.RawListing{ListingKey: "A1"}
	listing := sanitizeListing(raw, time.Now())

	assert.Nil(t, listing.UnparsedAddress)
	assert.Nil(t, listing.City)
	assert.Nil(t, listing.ListPrice)
	assert.Nil(t, listing.Bedrooms)
	assert.Nil(t, listing.LastUpdated)
}

func TestSanitizeMedia(t *testing.T) {
	raw := catalog.RawMedia{
		ResourceRecordKey: "A1",
		MediaURL:          strPtr("https://cdn.example.com/img.jpg"),
		MediaType:         strPtr("Photo"),
		MediaCategory:     strPtr("Exterior"),
		Order:             intPtr(2),
		ShortDescription:  strPtr("Front view"),
		PreferredPhotoYN:  boolPtr(true),
	}

	media := sanitizeMedia(raw)

	assert.Equal(t, "A1", media.ListingKey)
	require.NotNil(t, media.URL)
	assert.Equal(t, "https://cdn.example.com/img.jpg", *media.URL)
	require.NotNil(t, media.DisplayOrder)
	assert.Equal(t, 2, *media.DisplayOrder)
	assert.True(t, media.IsPrimary)
}

func TestSanitizeMedia_PrimaryFlagDefaultsFalse(t *testing.T) {
	media := sanitizeMedia(catalog.RawMedia{ResourceRecordKey: "A1"})
	assert.False(t, media.IsPrimary)
}
