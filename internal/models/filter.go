package models

// SearchFilter is the closed set of optional search predicates. A nil field
// imposes no constraint, which is not the same as matching a NULL or zero
// column value.
type SearchFilter struct {
	City      *string  `json:"city,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
}

// IsEmpty reports whether no predicate is supplied at all.
func (f SearchFilter) IsEmpty() bool {
	return f.City == nil && f.MinPrice == nil && f.MaxPrice == nil &&
		f.Bedrooms == nil && f.Bathrooms == nil
}
