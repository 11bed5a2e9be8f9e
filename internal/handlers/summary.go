package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/okoshkin/storefront/internal/authz"
	"github.com/okoshkin/storefront/internal/models"
)

// SummaryHandler is the store landing view: entity counts, plus the
// caller's own order count when authenticated.
type SummaryHandler struct {
	DB *gorm.DB
}

func (h *SummaryHandler) GetSummary(c echo.Context) error {
	var numCategories, numProducts, numUsers, numOrders, numMyOrders int64

	if err := h.DB.Model(&models.ProductCategory{}).Count(&numCategories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&models.Product{}).Count(&numProducts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&models.User{}).Count(&numUsers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Model(&models.Order{}).Count(&numOrders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if actor, ok := authz.FromContext(c); ok {
		if err := h.DB.Model(&models.Order{}).Where("user_id = ?", actor.ID).Count(&numMyOrders).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"num_categories": numCategories,
		"num_products":   numProducts,
		"num_users":      numUsers,
		"num_orders":     numOrders,
		"num_myorders":   numMyOrders,
	})
}
