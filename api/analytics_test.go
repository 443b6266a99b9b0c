package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/models"
	"expensetracker/store"
)

func TestExpenseHandler_Analytics(t *testing.T) {
	s := store.NewMemoryStore()
	seedExpense(t, s, "alice", "50.25", models.CategoryFood, "2025-06-01")
	seedExpense(t, s, "alice", "57.25", models.CategoryTransport, "2025-06-02")
	seedExpense(t, s, "bob", "1000.00", models.CategoryShopping, "2025-06-03")

	router := newExpenseRouter("alice", s)

	req := httptest.NewRequest("GET", "/expenses/analytics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp AnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "107.50", resp.Overview.TotalSpent)
	assert.Equal(t, int64(2), resp.Overview.ExpenseCount)
	assert.Equal(t, "53.75", resp.Overview.AvgExpense)
	assert.Equal(t, "57.25", resp.Overview.MaxExpense)
	assert.Equal(t, "50.25", resp.Overview.MinExpense)
	assert.Equal(t, "0.00", resp.Overview.ReceiptsPercentage)

	require.Len(t, resp.CategoryBreakdown, 2)
	assert.Equal(t, models.CategoryTransport, resp.CategoryBreakdown[0].Category)
	assert.Equal(t, "57.25", resp.CategoryBreakdown[0].Total)
	assert.Equal(t, "53.26", resp.CategoryBreakdown[0].Percentage)
	assert.Equal(t, "46.74", resp.CategoryBreakdown[1].Percentage)
}

func TestExpenseHandler_Analytics_Empty(t *testing.T) {
	router := newExpenseRouter("alice", store.NewMemoryStore())

	req := httptest.NewRequest("GET", "/expenses/analytics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp AnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0.00", resp.Overview.TotalSpent)
	assert.Equal(t, int64(0), resp.Overview.ExpenseCount)
	assert.Equal(t, "0.00", resp.Overview.ReceiptsPercentage)
	assert.Empty(t, resp.CategoryBreakdown)
}

func TestExpenseHandler_Analytics_DateRange(t *testing.T) {
	s := store.NewMemoryStore()
	seedExpense(t, s, "alice", "10.00", models.CategoryFood, "2025-05-31")
	seedExpense(t, s, "alice", "20.00", models.CategoryFood, "2025-06-15")

	router := newExpenseRouter("alice", s)

	req := httptest.NewRequest("GET", "/expenses/analytics?startDate=2025-06-01&endDate=2025-06-30", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp AnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "20.00", resp.Overview.TotalSpent)
	assert.Equal(t, int64(1), resp.Overview.ExpenseCount)

	// bad dates are rejected
	req = httptest.NewRequest("GET", "/expenses/analytics?startDate=June", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 400, w.Code)
}

func TestExpenseHandler_MonthlyReport(t *testing.T) {
	s := store.NewMemoryStore()
	seedExpense(t, s, "alice", "100.00", models.CategoryFood, "2025-01-15")
	seedExpense(t, s, "alice", "50.00", models.CategoryFood, "2025-01-20")
	seedExpense(t, s, "alice", "30.00", models.CategoryOther, "2025-12-31")
	seedExpense(t, s, "alice", "999.00", models.CategoryOther, "2024-03-01")

	router := newExpenseRouter("alice", s)

	req := httptest.NewRequest("GET", "/expenses/monthly-report?year=2025", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp MonthlyReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2025, resp.Year)
	require.Len(t, resp.Months, 12)
	assert.Equal(t, "January", resp.Months[0].MonthName)
	assert.Equal(t, "150.00", resp.Months[0].Total)
	assert.Equal(t, int64(2), resp.Months[0].Count)
	assert.Equal(t, "0.00", resp.Months[4].Total)
	assert.Equal(t, "30.00", resp.Months[11].Total)

	assert.Equal(t, "180.00", resp.YearTotals.Total)
	assert.Equal(t, int64(3), resp.YearTotals.Count)
	assert.Equal(t, "15.00", resp.YearTotals.AvgPerMonth)
}

func TestExpenseHandler_MonthlyReport_InvalidYear(t *testing.T) {
	router := newExpenseRouter("alice", store.NewMemoryStore())

	for _, q := range []string{"?year=abc", "?year=1999", "?year=2200"} {
		req := httptest.NewRequest("GET", "/expenses/monthly-report"+q, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 400, w.Code, q)
	}
}

func TestExpenseHandler_Recent(t *testing.T) {
	s := store.NewMemoryStore()
	today := time.Now().Format("2006-01-02")
	old := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	seedExpense(t, s, "alice", "10.00", models.CategoryFood, today)
	seedExpense(t, s, "alice", "99.00", models.CategoryFood, old)

	router := newExpenseRouter("alice", s)

	req := httptest.NewRequest("GET", "/expenses/recent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Expenses  []models.Expense `json:"expenses"`
		DateRange struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"dateRange"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Expenses, 1)
	assert.Equal(t, "10", resp.Expenses[0].Amount.String())
	assert.Equal(t, today, resp.DateRange.End)
}
