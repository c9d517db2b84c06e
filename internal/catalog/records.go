package catalog

import "time"

// RawListing is a listing record as the catalog API returns it, before
// sanitization. Field names mirror the catalog's Property resource.
type RawListing struct {
	ListingKey            string     `json:"ListingKey"`
	UnparsedAddress       *string    `json:"UnparsedAddress"`
	City                  *string    `json:"City"`
	StateOrProvince       *string    `json:"StateOrProvince"`
	PostalCode            *string    `json:"PostalCode"`
	ListPrice             *float64   `json:"ListPrice"`
	StandardStatus        *string    `json:"StandardStatus"`
	PropertyType          *string    `json:"PropertyType"`
	PropertySubType       *string    `json:"PropertySubType"`
	BedroomsTotal         *int       `json:"BedroomsTotal"`
	BathroomsTotalInteger *int       `json:"BathroomsTotalInteger"`
	YearBuilt             *int       `json:"YearBuilt"`
	PublicRemarks         *string    `json:"PublicRemarks"`
	ModificationTimestamp *time.Time `json:"ModificationTimestamp"`
}

// RawMedia is a media record as the catalog API returns it.
type RawMedia struct {
	ResourceRecordKey string  `json:"ResourceRecordKey"`
	MediaKey          string  `json:"MediaKey"`
	MediaURL          *string `json:"MediaURL"`
	MediaType         *string `json:"MediaType"`
	MediaCategory     *string `json:"MediaCategory"`
	Order             *int    `json:"Order"`
	PreferredPhotoYN  *bool   `json:"PreferredPhotoYN"`
	ShortDescription  *string `json:"ShortDescription"`
}
