package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expensetracker/database"
	"expensetracker/logger"
	"expensetracker/models"
)

// CategoryHandler serves the category catalog.
type CategoryHandler struct{}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// List returns the category catalog in display order.
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var list []models.ExpenseCategory
	if err := database.DB.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		logger.Error("list categories", zap.Error(err))
		InternalError(c, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}
