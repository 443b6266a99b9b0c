package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/models"
)

// MemoryStore is an in-memory ExpenseStore implementing the same contract
// as GormStore. It backs handler tests and lets the ownership-scoping rules
// be exercised without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	nextSeq int64
}

type memoryRecord struct {
	expense models.Expense
	seq     int64 // insertion order, tie-break for equal dates
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) matching(owner string, filter ListFilter) []memoryRecord {
	var out []memoryRecord
	for _, rec := range s.records {
		e := rec.expense
		if e.UserID != owner {
			continue
		}
		if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
			continue
		}
		if len(filter.Categories) > 0 {
			found := false
			for _, c := range filter.Categories {
				if e.Category == c {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.MinAmount != nil && e.Amount.LessThan(*filter.MinAmount) {
			continue
		}
		if filter.MaxAmount != nil && e.Amount.GreaterThan(*filter.MaxAmount) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].expense.Date, out[j].expense.Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// List returns one page of the owner's expenses, newest date first.
func (s *MemoryStore) List(ctx context.Context, owner string, filter ListFilter) ([]models.Expense, Page, error) {
	filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matching(owner, filter)
	total := int64(len(matched))

	offset := (filter.Page - 1) * filter.Limit
	expenses := []models.Expense{}
	for i := offset; i < len(matched) && i < offset+filter.Limit; i++ {
		expenses = append(expenses, matched[i].expense)
	}

	return expenses, NewPage(filter.Page, filter.Limit, total), nil
}

// Get returns the record only when it exists and belongs to the owner.
func (s *MemoryStore) Get(ctx context.Context, owner, id string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.expense.UserID != owner {
		return nil, ErrNotFound
	}
	e := rec.expense
	return &e, nil
}

// Create inserts a new record owned by the given subject.
func (s *MemoryStore) Create(ctx context.Context, owner string, fields CreateFields) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expense := models.Expense{
		ID:          uuid.NewString(),
		UserID:      owner,
		Amount:      fields.Amount.Round(2),
		Category:    fields.Category,
		Description: fields.Description,
		Date:        fields.Date,
		ReceiptURL:  fields.ReceiptURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextSeq++
	s.records[expense.ID] = memoryRecord{expense: expense, seq: s.nextSeq}

	e := expense
	return &e, nil
}

// Update applies the supplied fields to an owned record and refreshes
// UpdatedAt.
func (s *MemoryStore) Update(ctx context.Context, owner, id string, fields UpdateFields) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.expense.UserID != owner {
		return nil, ErrNotFound
	}

	e := rec.expense
	if fields.Amount != nil {
		e.Amount = fields.Amount.Round(2)
	}
	if fields.Category != nil {
		e.Category = *fields.Category
	}
	if fields.Description != nil {
		e.Description = *fields.Description
	}
	if fields.Date != nil {
		e.Date = *fields.Date
	}
	if fields.ReceiptURL != nil {
		e.ReceiptURL = *fields.ReceiptURL
	}
	e.UpdatedAt = time.Now()

	rec.expense = e
	s.records[id] = rec

	out := e
	return &out, nil
}

// Delete removes an owned record and returns it.
func (s *MemoryStore) Delete(ctx context.Context, owner, id string) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.expense.UserID != owner {
		return nil, ErrNotFound
	}
	delete(s.records, id)

	e := rec.expense
	return &e, nil
}

// Aggregate computes the owner's overview statistics in decimal.
func (s *MemoryStore) Aggregate(ctx context.Context, owner string, r DateRange) (Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matching(owner, ListFilter{StartDate: r.Start, EndDate: r.End})

	overview := Overview{
		TotalSpent: decimal.Zero,
		AvgExpense: decimal.Zero,
		MaxExpense: decimal.Zero,
		MinExpense: decimal.Zero,
	}
	for _, rec := range matched {
		amount := rec.expense.Amount
		overview.TotalSpent = overview.TotalSpent.Add(amount)
		if overview.ExpenseCount == 0 {
			overview.MaxExpense = amount
			overview.MinExpense = amount
		} else {
			if amount.GreaterThan(overview.MaxExpense) {
				overview.MaxExpense = amount
			}
			if amount.LessThan(overview.MinExpense) {
				overview.MinExpense = amount
			}
		}
		overview.ExpenseCount++
		if rec.expense.ReceiptURL != "" {
			overview.ReceiptsCount++
		}
	}
	if overview.ExpenseCount > 0 {
		overview.AvgExpense = overview.TotalSpent.Div(decimal.NewFromInt(overview.ExpenseCount))
	}
	return overview, nil
}

// CategoryBreakdown groups the owner's records by category, largest total
// first.
func (s *MemoryStore) CategoryBreakdown(ctx context.Context, owner string, r DateRange) ([]CategoryStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matching(owner, ListFilter{StartDate: r.Start, EndDate: r.End})

	byCategory := make(map[string]*CategoryStat)
	var order []string
	for _, rec := range matched {
		e := rec.expense
		stat, ok := byCategory[e.Category]
		if !ok {
			stat = &CategoryStat{Category: e.Category, Total: decimal.Zero}
			byCategory[e.Category] = stat
			order = append(order, e.Category)
		}
		stat.Total = stat.Total.Add(e.Amount)
		stat.Count++
	}

	stats := make([]CategoryStat, 0, len(order))
	for _, name := range order {
		stat := *byCategory[name]
		stat.AvgAmount = stat.Total.Div(decimal.NewFromInt(stat.Count))
		stats = append(stats, stat)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total.GreaterThan(stats[j].Total)
	})
	return stats, nil
}

// MonthlyReport returns twelve entries for the given calendar year.
func (s *MemoryStore) MonthlyReport(ctx context.Context, owner string, year int) ([]MonthlyStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := make([]MonthlyStat, 12)
	for i := range report {
		report[i] = MonthlyStat{Month: i + 1, Total: decimal.Zero}
	}
	for _, rec := range s.records {
		e := rec.expense
		if e.UserID != owner || e.Date.Year() != year {
			continue
		}
		m := int(e.Date.Month()) - 1
		report[m].Total = report[m].Total.Add(e.Amount)
		report[m].Count++
	}
	return report, nil
}
