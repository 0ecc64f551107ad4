package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-listing-backend/internal/emi"
	"estate-listing-backend/internal/models"
)

// EMI computes the loan installment breakdown for the project detail page.
func EMI(c *gin.Context) {
	var req models.EMIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	breakdown, err := emi.Calculate(req.Principal, req.AnnualRatePct, req.Months)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid loan parameters",
			Message: err.Error(),
		})
		return
	}

	response := models.EMIResponse{Breakdown: breakdown}
	if req.Schedule {
		rows, err := emi.Schedule(req.Principal, req.AnnualRatePct, req.Months)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid loan parameters",
				Message: err.Error(),
			})
			return
		}
		response.Schedule = rows
	}

	c.JSON(http.StatusOK, response)
}
