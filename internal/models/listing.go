package models

import (
	"time"
)

// Listing represents a single property record mirrored from the remote catalog.
// It is keyed by the stable external listing_key; every other field may be
// NULL at the source, so nullable fields use pointers to distinguish zero
// values from NULL.
type Listing struct {
	ListingKey      string     `json:"listing_key"`
	UnparsedAddress *string    `json:"address,omitempty"`
	City            *string    `json:"city,omitempty"`
	StateProvince   *string    `json:"state_province,omitempty"`
	PostalCode      *string    `json:"postal_code,omitempty"`
	ListPrice       *float64   `json:"list_price,omitempty"`
	StandardStatus  *string    `json:"status,omitempty"`
	PropertyType    *string    `json:"property_type,omitempty"`
	PropertySubType *string    `json:"property_subtype,omitempty"`
	Bedrooms        *int       `json:"bedrooms,omitempty"`
	Bathrooms       *int       `json:"bathrooms,omitempty"`
	YearBuilt       *int       `json:"year_built,omitempty"`
	PublicRemarks   *string    `json:"description,omitempty"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
	FetchedAt       time.Time  `json:"fetched_at"`

	// PhotoCount is derived by search queries and is not a stored column.
	PhotoCount int `json:"photo_count"`
}

// DisplayType returns the most specific property type available for
// presentation, preferring the subtype over the broad type.
func (l *Listing) DisplayType() string {
	if l.PropertySubType != nil && *l.PropertySubType != "" {
		return *l.PropertySubType
	}
	if l.PropertyType != nil {
		return *l.PropertyType
	}
	return ""
}
