package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// User is a local account. Accounts created through an external identity
// provider never appear here; their subjects come straight from the token.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string         `json:"name" gorm:"size:100"`
	Password  string         `json:"-" gorm:"size:255;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// Subject returns the ownership subject recorded on expenses created by
// this user.
func (u *User) Subject() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}
