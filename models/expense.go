package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is the single persisted record of the system. UserID is never
// taken from client input; it is always the verified token subject.
// Amount is stored as an exact decimal so aggregation never drifts.
type Expense struct {
	ID          string          `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      string          `json:"userId" gorm:"column:user_id;size:255;not null;index;index:idx_expenses_user_date,priority:1"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category    string          `json:"category" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Date        time.Time       `json:"date" gorm:"column:date;not null;index;index:idx_expenses_user_date,priority:2,sort:desc"`
	ReceiptURL  string          `json:"receiptUrl" gorm:"column:receipt_url;type:text"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName sets the table name.
func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate assigns the record id.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Default expense categories. The set is open: records are validated for a
// non-empty category, not membership.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transportation"
	CategoryEntertainment = "Entertainment"
	CategoryShopping      = "Shopping"
	CategoryHealthcare    = "Healthcare"
	CategoryUtilities     = "Utilities"
	CategoryOther         = "Other"
)

// DefaultCategories returns the seed category names.
func DefaultCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryShopping,
		CategoryHealthcare,
		CategoryUtilities,
		CategoryOther,
	}
}
