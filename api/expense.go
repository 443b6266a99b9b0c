package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expensetracker/logger"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/store"
)

// ExpenseHandler serves the expense CRUD and analytics routes. All data
// access goes through the injected store, scoped to the verified subject.
type ExpenseHandler struct {
	store store.ExpenseStore
}

// NewExpenseHandler creates an expense handler.
func NewExpenseHandler(s store.ExpenseStore) *ExpenseHandler {
	return &ExpenseHandler{store: s}
}

// CreateExpenseRequest is the create body. Ownership is never part of it.
type CreateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" example:"99.99"`
	Category    string           `json:"category" example:"Food"`
	Description string           `json:"description" example:"lunch"`
	Date        string           `json:"date" example:"2024-01-15"`
	ReceiptURL  string           `json:"receiptUrl"`
}

// UpdateExpenseRequest is the partial update body; absent fields are left
// unchanged.
type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
	ReceiptURL  *string          `json:"receiptUrl"`
}

// ExpenseListRequest are the list query parameters.
type ExpenseListRequest struct {
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Categories string `form:"categories"`
	MinAmount  string `form:"minAmount"`
	MaxAmount  string `form:"maxAmount"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// ExpenseListResponse is the list response envelope.
type ExpenseListResponse struct {
	Expenses   []models.Expense `json:"expenses"`
	Pagination store.Page       `json:"pagination"`
}

// List returns a filtered, paginated page of the caller's expenses.
// @Summary List expenses
// @Description Lists the authenticated user's expenses, newest date first, with optional date range, category and amount filters.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "inclusive end date (YYYY-MM-DD)"
// @Param categories query string false "comma-separated category names"
// @Param minAmount query string false "minimum amount"
// @Param maxAmount query string false "maximum amount"
// @Param page query int false "page number" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} ExpenseListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid query parameters"))
		return
	}

	filter := store.ListFilter{Page: req.Page, Limit: req.Limit}

	if req.StartDate != "" {
		t, err := parseStartDate(req.StartDate)
		if err != nil {
			BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := parseEndDate(req.EndDate)
		if err != nil {
			BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
			return
		}
		filter.EndDate = &t
	}
	if req.Categories != "" {
		for _, cat := range strings.Split(req.Categories, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				filter.Categories = append(filter.Categories, cat)
			}
		}
	}
	if req.MinAmount != "" {
		d, err := decimal.NewFromString(req.MinAmount)
		if err != nil {
			BadRequest(c, "Invalid minAmount")
			return
		}
		filter.MinAmount = &d
	}
	if req.MaxAmount != "" {
		d, err := decimal.NewFromString(req.MaxAmount)
		if err != nil {
			BadRequest(c, "Invalid maxAmount")
			return
		}
		filter.MaxAmount = &d
	}

	expenses, page, err := h.store.List(c.Request.Context(), owner, filter)
	if err != nil {
		logger.Error("list expenses", zap.Error(err))
		InternalError(c, "Failed to fetch expenses")
		return
	}

	c.JSON(http.StatusOK, ExpenseListResponse{
		Expenses:   expenses,
		Pagination: page,
	})
}

// Create records a new expense owned by the caller.
// @Summary Create expense
// @Description Creates an expense. Amount, category and date are required; ownership always comes from the verified token.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "expense fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request body"))
		return
	}

	// Validation happens before any store call.
	req.Category = strings.TrimSpace(req.Category)
	if req.Amount == nil || req.Category == "" || req.Date == "" {
		BadRequest(c, "Amount, category, and date are required")
		return
	}
	if req.Amount.IsNegative() {
		BadRequest(c, "Amount must not be negative")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	expense, err := h.store.Create(c.Request.Context(), owner, store.CreateFields{
		Amount:      *req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		logger.Error("create expense", zap.Error(err))
		InternalError(c, "Failed to create expense")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// Get returns one of the caller's expenses by id.
// @Summary Get expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "expense id"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)
	id := c.Param("id")

	expense, err := h.store.Get(c.Request.Context(), owner, id)
	if err != nil {
		h.notFoundOrInternal(c, err, "fetch expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// Update applies a partial update to one of the caller's expenses.
// @Summary Update expense
// @Description Updates only the supplied fields. A record owned by another user is reported as not found.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "expense id"
// @Param request body UpdateExpenseRequest true "fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)
	id := c.Param("id")

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request body"))
		return
	}

	fields := store.UpdateFields{
		Amount:      req.Amount,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		BadRequest(c, "Amount must not be negative")
		return
	}
	if req.Category != nil {
		cat := strings.TrimSpace(*req.Category)
		if cat == "" {
			BadRequest(c, "Category must not be empty")
			return
		}
		fields.Category = &cat
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		fields.Date = &date
	}

	expense, err := h.store.Update(c.Request.Context(), owner, id, fields)
	if err != nil {
		h.notFoundOrInternal(c, err, "update expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense updated successfully",
		"expense": expense,
	})
}

// Delete removes one of the caller's expenses and returns it.
// @Summary Delete expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "expense id"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)
	id := c.Param("id")

	expense, err := h.store.Delete(c.Request.Context(), owner, id)
	if err != nil {
		h.notFoundOrInternal(c, err, "delete expense")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expense deleted successfully",
		"expense": expense,
	})
}

// notFoundOrInternal maps store errors to responses. Absent and not-owned
// records produce the identical 404.
func (h *ExpenseHandler) notFoundOrInternal(c *gin.Context, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		NotFound(c, "Expense not found")
		return
	}
	logger.Error(op, zap.Error(err))
	InternalError(c, "Failed to "+op)
}
