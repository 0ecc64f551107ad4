package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-listing-backend/internal/listings"
	"estate-listing-backend/internal/models"
)

type ListingsHandler struct {
	cache *listings.Cache
}

func NewListingsHandler(cache *listings.Cache) *ListingsHandler {
	return &ListingsHandler{cache: cache}
}

// GetView serves one cached marketplace list view (featured, urgent, free).
func (h *ListingsHandler) GetView(c *gin.Context) {
	view := c.Param("view")
	if !listings.ValidView(view) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown listing view %q", view),
		})
		return
	}

	result, err := h.cache.Get(c.Request.Context(), view)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to fetch listings",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ListingsResponse{View: view, Listings: result})
}
