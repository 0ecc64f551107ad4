package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"estate-listing-backend/internal/handlers"
	"estate-listing-backend/internal/listings"
	"estate-listing-backend/internal/marketplace"
	"estate-listing-backend/internal/models"
)

type stubFetcher struct {
	calls int
}

func (s *stubFetcher) FetchListings(ctx context.Context, view string) ([]marketplace.ListingSummary, error) {
	s.calls++
	return []marketplace.ListingSummary{
		{ID: "l1", Title: "Corner plot facing the lake", City: "Nagpur", TotalPrice: 2500000},
	}, nil
}

func listingsRouter(fetcher listings.Fetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewListingsHandler(listings.NewCache(fetcher, time.Minute))
	router := gin.New()
	router.GET("/listings/:view", handler.GetView)
	return router
}

func TestGetView(t *testing.T) {
	fetcher := &stubFetcher{}
	router := listingsRouter(fetcher)

	req, _ := http.NewRequest("GET", "/listings/featured", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ListingsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "featured", resp.View)
	assert.Len(t, resp.Listings, 1)
	assert.Equal(t, "l1", resp.Listings[0].ID)
}

func TestGetView_CachedBetweenRequests(t *testing.T) {
	fetcher := &stubFetcher{}
	router := listingsRouter(fetcher)

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/listings/urgent", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, fetcher.calls)
}

func TestGetView_UnknownView(t *testing.T) {
	router := listingsRouter(&stubFetcher{})

	req, _ := http.NewRequest("GET", "/listings/premium", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown listing view")
}
