package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/homescout/api/internal/logger"
	"github.com/homescout/api/internal/middleware"
	"github.com/homescout/api/internal/models"
	"github.com/homescout/api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockListingService is a mock implementation of services.ListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Search(ctx context.Context, filter models.SearchFilter) ([]services.ListingResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ListingResult), args.Error(1)
}

func (m *MockListingService) AvailableCities(ctx context.Context) ([]models.CityCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CityCount), args.Error(1)
}

func (m *MockListingService) GetListing(ctx context.Context, listingKey string) (*services.ListingResult, error) {
	args := m.Called(ctx, listingKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ListingResult), args.Error(1)
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

// setupListingTestRouter creates a test router with middleware and listing routes.
func setupListingTestRouter(handler *ListingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	log := logger.New("test")
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/search", handler.Search)
		v1.GET("/cities", handler.Cities)
		v1.GET("/property/:listingKey", handler.Property)
	}

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleResult() services.ListingResult {
	return services.ListingResult{
		Listing: models.Listing{
			ListingKey:      "L1",
			UnparsedAddress: strPtr("12 Oak Ave"),
			City:            strPtr("Toronto"),
			ListPrice:       floatPtr(750000),
			Bedrooms:        intPtr(3),
			Bathrooms:       intPtr(2),
			PropertyType:    strPtr("Residential"),
			StandardStatus:  strPtr("Active"),
			PhotoCount:      5,
		},
		PreviewURLs: []string{"https://cdn.example.com/1.jpg"},
	}
}

func TestSearchEndpoint_Success(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("Search", mock.Anything, mock.MatchedBy(func(f models.SearchFilter) bool {
		return f.City != nil && *f.City == "Toronto" &&
			f.Bedrooms != nil && *f.Bedrooms == 3
	})).Return([]services.ListingResult{sampleResult()}, nil)

	w := postJSON(t, router, "/api/v1/search", `{"city": "Toronto", "bedrooms": 3}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Properties, 1)
	assert.Equal(t, "L1", resp.Properties[0].ListingKey)
	assert.Equal(t, "12 Oak Ave", resp.Properties[0].Address)
	assert.Equal(t, 5, resp.Properties[0].PhotoCount)
	assert.Equal(t, []string{"https://cdn.example.com/1.jpg"}, resp.Properties[0].MediaURLs)
}

func TestSearchEndpoint_EmptyBodyMatchesAll(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("Search", mock.Anything, models.SearchFilter{}).
		Return([]services.ListingResult{}, nil)

	w := postJSON(t, router, "/api/v1/search", `{}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Properties)
}

func TestSearchEndpoint_TypeMismatchIsBadRequest(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	// A string where a number belongs fails binding, never reaches the
	// service as a dropped predicate.
	w := postJSON(t, router, "/api/v1/search", `{"bedrooms": "three"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchEndpoint_NegativePriceIsBadRequest(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	w := postJSON(t, router, "/api/v1/search", `{"min_price": -100}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchEndpoint_InvalidFilterIsBadRequest(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("Search", mock.Anything, mock.Anything).
		Return(nil, services.ErrInvalidFilter)

	w := postJSON(t, router, "/api/v1/search", `{"min_price": 500000, "max_price": 100000}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint_ServiceFailureIsInternalError(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("Search", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	w := postJSON(t, router, "/api/v1/search", `{"city": "Toronto"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to search properties")
	// The raw error never leaks to the client.
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestCitiesEndpoint_Success(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("AvailableCities", mock.Anything).Return([]models.CityCount{
		{City: "Toronto", Count: 42, MinPrice: floatPtr(300000), MaxPrice: floatPtr(2000000)},
		{City: "Ottawa", Count: 17},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp CitiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalCities)
	assert.Equal(t, "Toronto", resp.Cities[0].City)
}

func TestCitiesEndpoint_ServiceFailure(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("AvailableCities", mock.Anything).Return(nil, errors.New("database down"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPropertyEndpoint_Success(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	result := sampleResult()
	svc.On("GetListing", mock.Anything, "L1").Return(&result, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/property/L1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PropertyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "L1", resp.Property.ListingKey)
	assert.Equal(t, "Toronto", resp.Property.City)
}

func TestPropertyEndpoint_NotFound(t *testing.T) {
	svc := new(MockListingService)
	router := setupListingTestRouter(NewListingHandler(svc))

	svc.On("GetListing", mock.Anything, "MISSING").
		Return(nil, services.ErrListingNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/property/MISSING", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Property not found")
}

func TestMapResultToDTO_TruncatesDescription(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	remarks := string(long)

	dto := mapResultToDTO(services.ListingResult{
		Listing: models.Listing{ListingKey: "L1", PublicRemarks: &remarks},
	})

	assert.Len(t, dto.Description, descriptionPreviewLen)
}

func TestMapResultToDTO_PrefersSubType(t *testing.T) {
	dto := mapResultToDTO(services.ListingResult{
		Listing: models.Listing{
			ListingKey:      "L1",
			PropertyType:    strPtr("Residential"),
			PropertySubType: strPtr("Detached"),
		},
	})

	assert.Equal(t, "Detached", dto.PropertyType)
}

func TestMapResultToDTO_NilMediaBecomesEmptySlice(t *testing.T) {
	dto := mapResultToDTO(services.ListingResult{
		Listing: models.Listing{ListingKey: "L1"},
	})

	assert.NotNil(t, dto.MediaURLs)
	assert.Empty(t, dto.MediaURLs)
}
