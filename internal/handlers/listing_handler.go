package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/homescout/api/internal/errors"
	"github.com/homescout/api/internal/middleware"
	"github.com/homescout/api/internal/models"
	"github.com/homescout/api/internal/services"
)

// ListingHandler handles direct search, city, and property detail requests.
type ListingHandler struct {
	service services.ListingService
}

// NewListingHandler creates a new ListingHandler instance.
func NewListingHandler(service services.ListingService) *ListingHandler {
	return &ListingHandler{
		service: service,
	}
}

// SearchRequest represents the body of the direct search endpoint. All
// predicates are optional; malformed types fail binding and yield a 400
// rather than being silently dropped.
type SearchRequest struct {
	City      *string  `json:"city" binding:"omitempty"`
	MinPrice  *float64 `json:"min_price" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price" binding:"omitempty,gte=0"`
	Bedrooms  *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms *int     `json:"bathrooms" binding:"omitempty,gte=0"`
}

// SearchResponse represents the direct search result set.
type SearchResponse struct {
	Properties []PropertyData `json:"properties"`
	Count      int            `json:"count"`
}

// PropertyData is the listing DTO returned by search and detail endpoints.
type PropertyData struct {
	ListingKey   string   `json:"listing_key"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty"`
	Status       string   `json:"status,omitempty"`
	Description  string   `json:"description,omitempty"`
	PhotoCount   int      `json:"photo_count"`
	MediaURLs    []string `json:"media_urls"`
}

// CitiesResponse represents the city aggregate response.
type CitiesResponse struct {
	TotalCities int                `json:"total_cities"`
	Cities      []models.CityCount `json:"cities"`
}

// PropertyResponse represents the single property detail response.
type PropertyResponse struct {
	Property PropertyData `json:"property"`
}

// descriptionPreviewLen bounds the remarks excerpt returned in search results.
const descriptionPreviewLen = 200

// Search handles POST /api/v1/search, the direct filtered search without
// natural-language processing.
func (h *ListingHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid search parameters", nil)
		return
	}

	filter := models.SearchFilter{
		City:      req.City,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing search request", map[string]interface{}{
			"filter_empty": filter.IsEmpty(),
		})
	}

	results, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidFilter) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to search properties, please try again", err)
		return
	}

	properties := make([]PropertyData, 0, len(results))
	for _, r := range results {
		properties = append(properties, mapResultToDTO(r))
	}

	c.JSON(http.StatusOK, SearchResponse{
		Properties: properties,
		Count:      len(properties),
	})
}

// Cities handles GET /api/v1/cities.
func (h *ListingHandler) Cities(c *gin.Context) {
	cities, err := h.service.AvailableCities(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load cities", err)
		return
	}

	c.JSON(http.StatusOK, CitiesResponse{
		TotalCities: len(cities),
		Cities:      cities,
	})
}

// Property handles GET /api/v1/property/:listingKey.
func (h *ListingHandler) Property(c *gin.Context) {
	listingKey := c.Param("listingKey")
	if listingKey == "" {
		apierrors.BadRequest(c, "listingKey is required", nil)
		return
	}

	result, err := h.service.GetListing(c.Request.Context(), listingKey)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			apierrors.NotFound(c, "Property not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load property", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{
		Property: mapResultToDTO(*result),
	})
}

// mapResultToDTO converts a service ListingResult to the API DTO.
func mapResultToDTO(r services.ListingResult) PropertyData {
	l := r.Listing

	dto := PropertyData{
		ListingKey:   l.ListingKey,
		Price:        l.ListPrice,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		YearBuilt:    l.YearBuilt,
		PropertyType: l.DisplayType(),
		PhotoCount:   l.PhotoCount,
		MediaURLs:    r.PreviewURLs,
	}

	if l.UnparsedAddress != nil {
		dto.Address = *l.UnparsedAddress
	}
	if l.City != nil {
		dto.City = *l.City
	}
	if l.PostalCode != nil {
		dto.PostalCode = *l.PostalCode
	}
	if l.StandardStatus != nil {
		dto.Status = *l.StandardStatus
	}
	if l.PublicRemarks != nil {
		desc := *l.PublicRemarks
		if len(desc) > descriptionPreviewLen {
			desc = desc[:descriptionPreviewLen]
		}
		dto.Description = desc
	}

	if dto.MediaURLs == nil {
		dto.MediaURLs = []string{}
	}

	return dto
}
