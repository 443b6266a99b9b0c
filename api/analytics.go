package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expensetracker/logger"
	"expensetracker/middleware"
	"expensetracker/store"
)

// OverviewResponse is the owner-level statistics block. Money renders as a
// two-decimal string.
type OverviewResponse struct {
	TotalSpent         string `json:"totalSpent"`
	ExpenseCount       int64  `json:"expenseCount"`
	AvgExpense         string `json:"avgExpense"`
	MaxExpense         string `json:"maxExpense"`
	MinExpense         string `json:"minExpense"`
	ReceiptsCount      int64  `json:"receiptsCount"`
	ReceiptsPercentage string `json:"receiptsPercentage"`
}

// CategoryBreakdownEntry is one category of the analytics breakdown.
type CategoryBreakdownEntry struct {
	Category   string `json:"category"`
	Total      string `json:"total"`
	Count      int64  `json:"count"`
	AvgAmount  string `json:"avgAmount"`
	Percentage string `json:"percentage"`
}

// AnalyticsResponse is the /api/expenses/analytics envelope.
type AnalyticsResponse struct {
	Overview          OverviewResponse         `json:"overview"`
	CategoryBreakdown []CategoryBreakdownEntry `json:"categoryBreakdown"`
}

// Analytics returns aggregate statistics and a category breakdown for the
// caller, optionally restricted to a date range.
// @Summary Expense analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} AnalyticsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/expenses/analytics [get]
func (h *ExpenseHandler) Analytics(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	r, ok := h.dateRangeFromQuery(c)
	if !ok {
		return
	}

	overview, err := h.store.Aggregate(c.Request.Context(), owner, r)
	if err != nil {
		logger.Error("aggregate expenses", zap.Error(err))
		InternalError(c, "Failed to fetch analytics")
		return
	}

	stats, err := h.store.CategoryBreakdown(c.Request.Context(), owner, r)
	if err != nil {
		logger.Error("category breakdown", zap.Error(err))
		InternalError(c, "Failed to fetch analytics")
		return
	}

	breakdown := make([]CategoryBreakdownEntry, 0, len(stats))
	for _, stat := range stats {
		breakdown = append(breakdown, CategoryBreakdownEntry{
			Category:   stat.Category,
			Total:      stat.Total.StringFixed(2),
			Count:      stat.Count,
			AvgAmount:  stat.AvgAmount.StringFixed(2),
			Percentage: stat.Percentage(overview.TotalSpent),
		})
	}

	c.JSON(http.StatusOK, AnalyticsResponse{
		Overview: OverviewResponse{
			TotalSpent:         overview.TotalSpent.StringFixed(2),
			ExpenseCount:       overview.ExpenseCount,
			AvgExpense:         overview.AvgExpense.StringFixed(2),
			MaxExpense:         overview.MaxExpense.StringFixed(2),
			MinExpense:         overview.MinExpense.StringFixed(2),
			ReceiptsCount:      overview.ReceiptsCount,
			ReceiptsPercentage: overview.ReceiptsPercentage(),
		},
		CategoryBreakdown: breakdown,
	})
}

// MonthEntry is one calendar month of the monthly report.
type MonthEntry struct {
	Month     int    `json:"month"`
	MonthName string `json:"monthName"`
	Total     string `json:"total"`
	Count     int64  `json:"count"`
}

// YearTotals summarizes a monthly report.
type YearTotals struct {
	Total       string `json:"total"`
	Count       int64  `json:"count"`
	AvgPerMonth string `json:"avgPerMonth"`
}

// MonthlyReportResponse is the /api/expenses/monthly-report envelope.
type MonthlyReportResponse struct {
	Year       int          `json:"year"`
	Months     []MonthEntry `json:"months"`
	YearTotals YearTotals   `json:"yearTotals"`
}

// MonthlyReport returns per-month totals for a calendar year. All twelve
// months are present; empty months report zero.
// @Summary Monthly report
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param year query int false "calendar year, defaults to the current year"
// @Success 200 {object} MonthlyReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/expenses/monthly-report [get]
func (h *ExpenseHandler) MonthlyReport(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	year := time.Now().Year()
	if yearStr := c.Query("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y < 2000 || y > 2100 {
			BadRequest(c, "Invalid year, expected a four-digit year")
			return
		}
		year = y
	}

	months, err := h.store.MonthlyReport(c.Request.Context(), owner, year)
	if err != nil {
		logger.Error("monthly report", zap.Error(err))
		InternalError(c, "Failed to generate monthly report")
		return
	}

	yearTotal := decimal.Zero
	var yearCount int64
	entries := make([]MonthEntry, 0, len(months))
	for _, m := range months {
		yearTotal = yearTotal.Add(m.Total)
		yearCount += m.Count
		entries = append(entries, MonthEntry{
			Month:     m.Month,
			MonthName: time.Month(m.Month).String(),
			Total:     m.Total.StringFixed(2),
			Count:     m.Count,
		})
	}

	c.JSON(http.StatusOK, MonthlyReportResponse{
		Year:   year,
		Months: entries,
		YearTotals: YearTotals{
			Total:       yearTotal.StringFixed(2),
			Count:       yearCount,
			AvgPerMonth: yearTotal.Div(decimal.NewFromInt(12)).StringFixed(2),
		},
	})
}

const (
	recentDays  = 7
	recentLimit = 20
)

// Recent returns the caller's expenses from the last seven days, newest
// first, capped at twenty records.
// @Summary Recent expenses
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /api/expenses/recent [get]
func (h *ExpenseHandler) Recent(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	start := now.With(time.Now().AddDate(0, 0, -recentDays)).BeginningOfDay()
	expenses, _, err := h.store.List(c.Request.Context(), owner, store.ListFilter{
		StartDate: &start,
		Limit:     recentLimit,
	})
	if err != nil {
		logger.Error("recent expenses", zap.Error(err))
		InternalError(c, "Failed to fetch recent expenses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"dateRange": gin.H{
			"start": start.Format("2006-01-02"),
			"end":   time.Now().Format("2006-01-02"),
		},
	})
}

// dateRangeFromQuery parses the optional startDate/endDate parameters,
// writing a 400 response on bad input.
func (h *ExpenseHandler) dateRangeFromQuery(c *gin.Context) (store.DateRange, bool) {
	var r store.DateRange
	if s := c.Query("startDate"); s != "" {
		t, err := parseStartDate(s)
		if err != nil {
			BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
			return r, false
		}
		r.Start = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := parseEndDate(s)
		if err != nil {
			BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
			return r, false
		}
		r.End = &t
	}
	return r, true
}
