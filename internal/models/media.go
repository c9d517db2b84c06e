package models

// Media represents an image or video asset owned by exactly one listing.
// Rows are append-only: they are inserted during the media fan-out phase of a
// sync run and only ever removed when the parent listing row is deleted
// (ON DELETE CASCADE).
type Media struct {
	ID           int64   `json:"id"`
	ListingKey   string  `json:"listing_key"`
	URL          *string `json:"media_url,omitempty"`
	Type         *string `json:"media_type,omitempty"`
	Category     *string `json:"media_category,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsPrimary    bool    `json:"is_primary"`
}

// CityCount is a row of the city aggregate: a distinct city with its listing
// count and price spread.
type CityCount struct {
	City     string   `json:"city"`
	Count    int      `json:"property_count"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	AvgPrice *float64 `json:"avg_price,omitempty"`
}
