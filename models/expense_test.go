package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseBeforeCreate(t *testing.T) {
	e := &Expense{}
	require.NoError(t, e.BeforeCreate(nil))
	assert.Len(t, e.ID, 36)

	// an assigned id is kept
	e2 := &Expense{ID: "preset-id"}
	require.NoError(t, e2.BeforeCreate(nil))
	assert.Equal(t, "preset-id", e2.ID)
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	assert.Len(t, cats, 7)
	assert.Contains(t, cats, CategoryFood)
	assert.Contains(t, cats, CategoryOther)
}

func TestUserSubject(t *testing.T) {
	u := &User{ID: 42}
	assert.Equal(t, "42", u.Subject())
}
