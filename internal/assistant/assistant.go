package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/homescout/api/internal/models"
)

// Assistant is the text-understanding capability consumed by the chat flow.
// Both operations run under a bounded timeout; any failure, timeout, or
// output that fails to parse as the expected shape returns an error, and the
// caller falls back to a deterministic presentation.
type Assistant interface {
	// Extract converts free text into a partial predicate set.
	Extract(ctx context.Context, message string) (models.SearchFilter, error)

	// Summarize converts a result set plus the original query into prose.
	Summarize(ctx context.Context, listings []models.Listing, originalQuery string) (string, error)
}

// FallbackSummary is the deterministic templated enumeration used whenever
// the assistant errors, times out, or returns unparsable content. It is also
// the zero-results message.
func FallbackSummary(listings []models.Listing) string {
	if len(listings) == 0 {
		return "I couldn't find any properties matching your criteria. " +
			"Try adjusting your search or ask 'what cities are available?'"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d properties:\n\n", len(listings))

	shown := listings
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for i, l := range shown {
		address := "Address not listed"
		if l.UnparsedAddress != nil {
			address = *l.UnparsedAddress
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, address)

		price := "Price not listed"
		if l.ListPrice != nil {
			price = fmt.Sprintf("$%.0f", *l.ListPrice)
		}
		beds, baths := 0, 0
		if l.Bedrooms != nil {
			beds = *l.Bedrooms
		}
		if l.Bathrooms != nil {
			baths = *l.Bathrooms
		}
		fmt.Fprintf(&b, "   %s | %d bed, %d bath\n", price, beds, baths)
		fmt.Fprintf(&b, "   %d photos available\n\n", l.PhotoCount)
	}

	return b.String()
}
