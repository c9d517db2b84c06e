package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/homescout/api/internal/config"
	"github.com/homescout/api/internal/logger"
)

const (
	listingTimeout = 60 * time.Second
	mediaTimeout   = 30 * time.Second

	// listingSelect is the fixed field projection requested from the
	// catalog's Property resource.
	listingSelect = "ListingKey,City,ListPrice,BedroomsTotal," +
		"BathroomsTotalInteger,PropertyType,PropertySubType," +
		"YearBuilt,StandardStatus,ModificationTimestamp,PublicRemarks," +
		"UnparsedAddress,PostalCode,StateOrProvince"

	mediaSelect = "ResourceRecordKey,MediaKey,MediaURL,MediaType," +
		"MediaCategory,Order,PreferredPhotoYN,ShortDescription"
)

// Fetcher retrieves listing and media batches from the remote catalog.
// Implementations never return an error: remote failures collapse to an
// empty result plus a diagnostic, so callers cannot distinguish end-of-data
// from a failed fetch. Partial media results are acceptable.
type Fetcher interface {
	// FetchListings requests one page of listings with the fixed field
	// projection. top is the page size, skip the offset.
	FetchListings(ctx context.Context, top, skip int) []RawListing

	// FetchMedia fetches media for the given listing keys, one request per
	// key. Per-key failures are logged and skipped; no retry.
	FetchMedia(ctx context.Context, keys []string) []RawMedia
}

// Client is an HTTP Fetcher for an OData-style listing catalog API using
// Bearer-token authorization.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a catalog Client from configuration.
func NewClient(cfg config.CatalogConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: listingTimeout,
		},
		log: log,
	}
}

// valueEnvelope is the JSON body shape of catalog responses.
type valueEnvelope[T any] struct {
	Value []T `json:"value"`
}

// FetchListings issues one bounded-timeout GET for a page of listings.
// A non-2xx status or transport failure yields an empty slice and a warning.
func (c *Client) FetchListings(ctx context.Context, top, skip int) []RawListing {
	params := url.Values{}
	params.Set("$top", fmt.Sprintf("%d", top))
	params.Set("$skip", fmt.Sprintf("%d", skip))
	params.Set("$select", listingSelect)

	listings, err := doFetch[RawListing](ctx, c, "/Property", params, listingTimeout)
	if err != nil {
		c.log.Warn("Listing fetch failed", map[string]interface{}{
			"top":   top,
			"skip":  skip,
			"error": err.Error(),
		})
		return []RawListing{}
	}
	return listings
}

// FetchMedia issues one request per listing key against the Media resource.
// Failures for individual keys are logged and skipped.
func (c *Client) FetchMedia(ctx context.Context, keys []string) []RawMedia {
	var records []RawMedia

	for _, key := range keys {
		params := url.Values{}
		params.Set("$filter", fmt.Sprintf("ResourceName eq 'Property' and ResourceRecordKey eq '%s'", key))
		params.Set("$select", mediaSelect)

		media, err := doFetch[RawMedia](ctx, c, "/Media", params, mediaTimeout)
		if err != nil {
			c.log.Warn("Media fetch failed", map[string]interface{}{
				"listing_key": key,
				"error":       err.Error(),
			})
			continue
		}
		records = append(records, media...)
	}

	return records
}

// doFetch performs a single GET against the catalog and decodes the value
// envelope. The per-request timeout bounds the call even when the parent
// context has none.
func doFetch[T any](ctx context.Context, c *Client, path string, params url.Values, timeout time.Duration) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Include a bounded slice of the body for diagnostics.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var envelope valueEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return envelope.Value, nil
}
