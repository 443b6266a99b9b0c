package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/models"
)

func TestCategoryHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `expense_categories`.*ORDER BY sort ASC, id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sort", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, models.CategoryFood, 10, now, now, nil).
			AddRow(2, models.CategoryTransport, 20, now, now, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/categories", NewCategoryHandler().List)

	req := httptest.NewRequest("GET", "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Categories []models.ExpenseCategory `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, models.CategoryFood, resp.Categories[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
