package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewGormStore(gormDB), mock, func() { sqlDB.Close() }
}

func expenseColumns() []string {
	return []string{"id", "user_id", "amount", "category", "description", "date", "receipt_url", "created_at", "updated_at"}
}

func TestGormStoreGet(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE .*id = \\? AND user_id = \\?").
		WithArgs("exp-1", "alice").
		WillReturnRows(sqlmock.NewRows(expenseColumns()).
			AddRow("exp-1", "alice", "42.50", "Food", "lunch", now, "", now, now))

	got, err := s.Get(context.Background(), "alice", "exp-1")
	require.NoError(t, err)
	assert.Equal(t, "exp-1", got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "42.50", got.Amount.StringFixed(2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreGetNotFound(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE .*id = \\? AND user_id = \\?").
		WithArgs("exp-1", "bob").
		WillReturnRows(sqlmock.NewRows(expenseColumns()))

	_, err := s.Get(context.Background(), "bob", "exp-1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreList(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expenses` WHERE user_id = \\?").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_id = \\? ORDER BY date DESC").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(expenseColumns()).
			AddRow("exp-2", "alice", "20.00", "Food", "", now, "", now, now).
			AddRow("exp-1", "alice", "10.00", "Other", "", now.Add(-time.Hour), "", now, now))

	expenses, page, err := s.List(context.Background(), "alice", ListFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "exp-2", expenses[0].ID)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNextPage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreListWithFilters(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	start := day(2025, 6, 1)
	end := day(2025, 6, 30)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `expenses` WHERE user_id = \\? AND date >= \\? AND date <= \\? AND category IN \\(\\?\\) AND amount >= \\?").
		WithArgs("alice", start, end, "Food", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE user_id = \\?.*ORDER BY date DESC").
		WithArgs("alice", start, end, "Food", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(expenseColumns()))

	expenses, page, err := s.List(context.Background(), "alice", ListFilter{
		StartDate:  &start,
		EndDate:    &end,
		Categories: []string{"Food"},
		MinAmount:  decPtr("5.00"),
	})
	require.NoError(t, err)
	assert.Empty(t, expenses)
	assert.Equal(t, int64(0), page.TotalCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreate(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expenses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := s.Create(context.Background(), "alice", CreateFields{
		Amount:   dec("15.00"),
		Category: "Food",
		Date:     day(2025, 6, 1),
	})
	require.NoError(t, err)
	// the uuid primary key is assigned before insert
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreUpdateNotOwned(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE .*id = \\? AND user_id = \\?").
		WithArgs("exp-1", "bob").
		WillReturnRows(sqlmock.NewRows(expenseColumns()))

	_, err := s.Update(context.Background(), "bob", "exp-1", UpdateFields{Description: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreDelete(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expenses` WHERE .*id = \\? AND user_id = \\?").
		WithArgs("exp-1", "alice").
		WillReturnRows(sqlmock.NewRows(expenseColumns()).
			AddRow("exp-1", "alice", "10.00", "Food", "", now, "", now, now))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `expenses`").
		WithArgs("exp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := s.Delete(context.Background(), "alice", "exp-1")
	require.NoError(t, err)
	assert.Equal(t, "exp-1", deleted.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreAggregate(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) AS total_spent.*FROM `expenses` WHERE user_id = \\?").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"total_spent", "expense_count", "avg_expense", "max_expense", "min_expense", "receipts_count"}).
			AddRow("107.50", 2, "53.75", "57.25", "50.25", 1))

	overview, err := s.Aggregate(context.Background(), "alice", DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "107.50", overview.TotalSpent.StringFixed(2))
	assert.Equal(t, int64(2), overview.ExpenseCount)
	assert.Equal(t, "53.75", overview.AvgExpense.StringFixed(2))
	assert.Equal(t, "50.00", overview.ReceiptsPercentage())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCategoryBreakdown(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT category, SUM\\(amount\\) AS total.*FROM `expenses` WHERE user_id = \\?.*GROUP BY `category` ORDER BY total DESC").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"category", "total", "count", "avg_amount"}).
			AddRow("Food", "80.00", 2, "40.00").
			AddRow("Utilities", "20.00", 1, "20.00"))

	stats, err := s.CategoryBreakdown(context.Background(), "alice", DateRange{})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Food", stats[0].Category)
	assert.Equal(t, "80.00", stats[0].Total.StringFixed(2))
	assert.Equal(t, int64(2), stats[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreMonthlyReport(t *testing.T) {
	s, mock, cleanup := setupMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT MONTH\\(date\\) AS month, SUM\\(amount\\) AS total, COUNT\\(\\*\\) AS count FROM `expenses` WHERE user_id = \\? AND \\(date >= \\? AND date <= \\?\\) GROUP BY MONTH\\(date\\)").
		WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"month", "total", "count"}).
			AddRow(1, "150.00", 2).
			AddRow(12, "30.00", 1))

	report, err := s.MonthlyReport(context.Background(), "alice", 2025)
	require.NoError(t, err)
	require.Len(t, report, 12)
	assert.Equal(t, "150.00", report[0].Total.StringFixed(2))
	assert.Equal(t, int64(2), report[0].Count)
	assert.Equal(t, "0.00", report[5].Total.StringFixed(2))
	assert.Equal(t, "30.00", report[11].Total.StringFixed(2))
	require.NoError(t, mock.ExpectationsWereMet())
}
