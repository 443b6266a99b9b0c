// Package store implements ownership-scoped access to the expense relation.
// Every operation takes the verified owner subject and predicates on it; a
// record that exists under another owner is indistinguishable from one that
// does not exist.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/models"
)

// ErrNotFound is returned for records that are absent or owned by someone
// else. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("expense not found")

const (
	// DefaultPage and DefaultLimit apply when pagination is unspecified.
	DefaultPage  = 1
	DefaultLimit = 20
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// ListFilter describes the optional predicates of a List call. All set
// fields AND-combine with the mandatory owner predicate.
type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Categories []string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Page       int
	Limit      int
}

// Normalize applies pagination defaults and caps.
func (f *ListFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = DefaultPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}

// DateRange restricts aggregate queries. Nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Page describes the pagination of a List result.
type Page struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPage derives the page flags from a total count.
func NewPage(page, limit int, total int64) Page {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Page{
		Page:            page,
		Limit:           limit,
		TotalCount:      total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// CreateFields carries the client-supplied fields of a new expense. The
// owner is passed separately and always comes from the verified token.
type CreateFields struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
	ReceiptURL  string
}

// UpdateFields carries a partial update; nil fields are left untouched.
type UpdateFields struct {
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Date        *time.Time
	ReceiptURL  *string
}

// Empty reports whether no field is set.
func (u UpdateFields) Empty() bool {
	return u.Amount == nil && u.Category == nil && u.Description == nil &&
		u.Date == nil && u.ReceiptURL == nil
}

// Overview is the owner-level aggregate of Aggregate.
type Overview struct {
	TotalSpent    decimal.Decimal
	ExpenseCount  int64
	AvgExpense    decimal.Decimal
	MaxExpense    decimal.Decimal
	MinExpense    decimal.Decimal
	ReceiptsCount int64
}

// ReceiptsPercentage returns the share of records carrying a receipt,
// rendered with two decimals. A zero count yields "0.00".
func (o Overview) ReceiptsPercentage() string {
	if o.ExpenseCount == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(o.ReceiptsCount).
		Div(decimal.NewFromInt(o.ExpenseCount)).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2)
}

// CategoryStat is one row of CategoryBreakdown, ordered by Total descending.
type CategoryStat struct {
	Category  string
	Total     decimal.Decimal
	Count     int64
	AvgAmount decimal.Decimal
}

// Percentage returns this category's share of totalSpent with two decimals.
// A zero total yields "0.00".
func (c CategoryStat) Percentage(totalSpent decimal.Decimal) string {
	if totalSpent.IsZero() {
		return "0.00"
	}
	return c.Total.Div(totalSpent).Mul(decimal.NewFromInt(100)).StringFixed(2)
}

// MonthlyStat is one calendar month of MonthlyReport. Months without
// records report a zero total, never an absent entry.
type MonthlyStat struct {
	Month int
	Total decimal.Decimal
	Count int64
}

// ExpenseStore is the record store access layer. Implementations must
// guarantee that no operation ever reads or mutates a record whose owner
// differs from the given subject.
type ExpenseStore interface {
	List(ctx context.Context, owner string, filter ListFilter) ([]models.Expense, Page, error)
	Get(ctx context.Context, owner, id string) (*models.Expense, error)
	Create(ctx context.Context, owner string, fields CreateFields) (*models.Expense, error)
	Update(ctx context.Context, owner, id string, fields UpdateFields) (*models.Expense, error)
	Delete(ctx context.Context, owner, id string) (*models.Expense, error)
	Aggregate(ctx context.Context, owner string, r DateRange) (Overview, error)
	CategoryBreakdown(ctx context.Context, owner string, r DateRange) ([]CategoryStat, error)
	MonthlyReport(ctx context.Context, owner string, year int) ([]MonthlyStat, error)
}
