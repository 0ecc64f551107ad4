package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-listing-backend/internal/catalog"
	"estate-listing-backend/internal/models"
)

// Catalog serves the discovery mega-menu payload plus the option sets the
// wizard's classification step renders.
func Catalog(c *gin.Context) {
	transactions := make(map[string][]catalog.TransactionType)
	for _, userType := range catalog.UserTypes {
		for _, category := range catalog.Categories {
			for _, propertyType := range catalog.TypesFor(category) {
				key := string(userType) + ":" + string(propertyType)
				transactions[key] = catalog.TransactionsFor(userType, propertyType)
			}
		}
	}

	c.JSON(http.StatusOK, models.CatalogResponse{
		Menu:         catalog.MenuSections(),
		UserTypes:    catalog.UserTypes,
		AreaUnits:    catalog.AreaUnits,
		Amenities:    catalog.Amenities,
		Transactions: transactions,
	})
}
