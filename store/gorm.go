package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expensetracker/models"
)

// GormStore is the MySQL-backed ExpenseStore. Aggregation runs in SQL; the
// database stores amounts as DECIMAL(10,2) so sums carry no float drift.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore on the given connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// scoped returns an expense query restricted to the owner.
func (s *GormStore) scoped(ctx context.Context, owner string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", owner)
}

func applyDateRange(q *gorm.DB, r DateRange) *gorm.DB {
	if r.Start != nil {
		q = q.Where("date >= ?", *r.Start)
	}
	if r.End != nil {
		q = q.Where("date <= ?", *r.End)
	}
	return q
}

// List returns one page of the owner's expenses, newest occurrence date
// first, with the total count across all pages.
func (s *GormStore) List(ctx context.Context, owner string, filter ListFilter) ([]models.Expense, Page, error) {
	filter.Normalize()

	q := s.scoped(ctx, owner)
	q = applyDateRange(q, DateRange{Start: filter.StartDate, End: filter.EndDate})
	if len(filter.Categories) > 0 {
		q = q.Where("category IN ?", filter.Categories)
	}
	if filter.MinAmount != nil {
		q = q.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		q = q.Where("amount <= ?", *filter.MaxAmount)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Page{}, err
	}

	var expenses []models.Expense
	offset := (filter.Page - 1) * filter.Limit
	if err := q.Order("date DESC, created_at ASC, id ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&expenses).Error; err != nil {
		return nil, Page{}, err
	}

	return expenses, NewPage(filter.Page, filter.Limit, total), nil
}

// Get returns the record only when it exists and belongs to the owner.
func (s *GormStore) Get(ctx context.Context, owner, id string) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// Create inserts a new record owned by the given subject.
func (s *GormStore) Create(ctx context.Context, owner string, fields CreateFields) (*models.Expense, error) {
	expense := models.Expense{
		UserID:      owner,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Description: fields.Description,
		Date:        fields.Date,
		ReceiptURL:  fields.ReceiptURL,
	}
	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// Update applies the supplied fields to an owned record and refreshes
// updated_at. Ownership mismatch surfaces as ErrNotFound.
func (s *GormStore) Update(ctx context.Context, owner, id string, fields UpdateFields) (*models.Expense, error) {
	expense, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if fields.Amount != nil {
		updates["amount"] = *fields.Amount
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Date != nil {
		updates["date"] = *fields.Date
	}
	if fields.ReceiptURL != nil {
		updates["receipt_url"] = *fields.ReceiptURL
	}

	if err := s.db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored values.
	return s.Get(ctx, owner, id)
}

// Delete removes an owned record and returns it. Ownership mismatch
// surfaces as ErrNotFound.
func (s *GormStore) Delete(ctx context.Context, owner, id string) (*models.Expense, error) {
	expense, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

type overviewRow struct {
	TotalSpent    decimal.Decimal `gorm:"column:total_spent"`
	ExpenseCount  int64           `gorm:"column:expense_count"`
	AvgExpense    decimal.Decimal `gorm:"column:avg_expense"`
	MaxExpense    decimal.Decimal `gorm:"column:max_expense"`
	MinExpense    decimal.Decimal `gorm:"column:min_expense"`
	ReceiptsCount int64           `gorm:"column:receipts_count"`
}

// Aggregate computes the owner's overview statistics inside the database.
func (s *GormStore) Aggregate(ctx context.Context, owner string, r DateRange) (Overview, error) {
	q := applyDateRange(s.scoped(ctx, owner), r)

	var row overviewRow
	err := q.Select(
		"COALESCE(SUM(amount), 0) AS total_spent, " +
			"COUNT(*) AS expense_count, " +
			"COALESCE(AVG(amount), 0) AS avg_expense, " +
			"COALESCE(MAX(amount), 0) AS max_expense, " +
			"COALESCE(MIN(amount), 0) AS min_expense, " +
			"COUNT(CASE WHEN receipt_url IS NOT NULL AND receipt_url <> '' THEN 1 END) AS receipts_count",
	).Scan(&row).Error
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		TotalSpent:    row.TotalSpent,
		ExpenseCount:  row.ExpenseCount,
		AvgExpense:    row.AvgExpense,
		MaxExpense:    row.MaxExpense,
		MinExpense:    row.MinExpense,
		ReceiptsCount: row.ReceiptsCount,
	}, nil
}

type categoryRow struct {
	Category  string          `gorm:"column:category"`
	Total     decimal.Decimal `gorm:"column:total"`
	Count     int64           `gorm:"column:count"`
	AvgAmount decimal.Decimal `gorm:"column:avg_amount"`
}

// CategoryBreakdown groups the owner's records by category, largest total
// first.
func (s *GormStore) CategoryBreakdown(ctx context.Context, owner string, r DateRange) ([]CategoryStat, error) {
	q := applyDateRange(s.scoped(ctx, owner), r)

	var rows []categoryRow
	err := q.Select("category, SUM(amount) AS total, COUNT(*) AS count, AVG(amount) AS avg_amount").
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]CategoryStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, CategoryStat{
			Category:  row.Category,
			Total:     row.Total,
			Count:     row.Count,
			AvgAmount: row.AvgAmount,
		})
	}
	return stats, nil
}

type monthRow struct {
	Month int             `gorm:"column:month"`
	Total decimal.Decimal `gorm:"column:total"`
	Count int64           `gorm:"column:count"`
}

// MonthlyReport returns twelve entries for the given calendar year. Months
// with no records report zero.
func (s *GormStore) MonthlyReport(ctx context.Context, owner string, year int) ([]MonthlyStat, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, 12, 31, 23, 59, 59, 0, time.Local)

	var rows []monthRow
	err := s.scoped(ctx, owner).
		Select("MONTH(date) AS month, SUM(amount) AS total, COUNT(*) AS count").
		Where("date >= ? AND date <= ?", start, end).
		Group("MONTH(date)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	report := make([]MonthlyStat, 12)
	for i := range report {
		report[i] = MonthlyStat{Month: i + 1, Total: decimal.Zero}
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			report[row.Month-1].Total = row.Total
			report[row.Month-1].Count = row.Count
		}
	}
	return report, nil
}
