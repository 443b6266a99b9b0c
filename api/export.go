package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"expensetracker/logger"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/store"
)

// ExportHandler serves owner-scoped expense exports.
type ExportHandler struct {
	store store.ExpenseStore
}

// NewExportHandler creates an export handler.
func NewExportHandler(s store.ExpenseStore) *ExportHandler {
	return &ExportHandler{store: s}
}

// exportRange parses the required startDate/endDate parameters.
func (h *ExportHandler) exportRange(c *gin.Context) (store.ListFilter, bool) {
	startStr := c.Query("startDate")
	endStr := c.Query("endDate")
	if startStr == "" || endStr == "" {
		BadRequest(c, "startDate and endDate are required")
		return store.ListFilter{}, false
	}

	start, err := parseStartDate(startStr)
	if err != nil {
		BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
		return store.ListFilter{}, false
	}
	end, err := parseEndDate(endStr)
	if err != nil {
		BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
		return store.ListFilter{}, false
	}

	return store.ListFilter{StartDate: &start, EndDate: &end}, true
}

// fetchAll walks every page of the filtered listing.
func (h *ExportHandler) fetchAll(c *gin.Context, owner string, filter store.ListFilter) ([]models.Expense, error) {
	filter.Limit = store.MaxLimit
	filter.Page = 1

	var all []models.Expense
	for {
		expenses, page, err := h.store.List(c.Request.Context(), owner, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, expenses...)
		if !page.HasNextPage {
			return all, nil
		}
		filter.Page++
	}
}

// ExportCSV exports a date range as a CSV download.
// @Summary Export expenses as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param startDate query string true "inclusive start date (YYYY-MM-DD)"
// @Param endDate query string true "inclusive end date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	filter, ok := h.exportRange(c)
	if !ok {
		return
	}
	expenses, err := h.fetchAll(c, owner, filter)
	if err != nil {
		logger.Error("export csv", zap.Error(err))
		InternalError(c, "Failed to export expenses")
		return
	}

	buf := new(bytes.Buffer)
	// BOM so spreadsheet apps detect UTF-8.
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"ID", "Amount", "Category", "Description", "Date", "Receipt", "Created At"}); err != nil {
		InternalError(c, "Failed to generate CSV")
		return
	}
	for _, e := range expenses {
		row := []string{
			e.ID,
			e.Amount.StringFixed(2),
			e.Category,
			e.Description,
			e.Date.Format("2006-01-02"),
			e.ReceiptURL,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "Failed to generate CSV")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "Failed to generate CSV")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", c.Query("startDate"), c.Query("endDate"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON exports a date range with summary totals.
// @Summary Export expenses as JSON
// @Tags export
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "inclusive start date (YYYY-MM-DD)"
// @Param endDate query string true "inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	filter, ok := h.exportRange(c)
	if !ok {
		return
	}
	expenses, err := h.fetchAll(c, owner, filter)
	if err != nil {
		logger.Error("export json", zap.Error(err))
		InternalError(c, "Failed to export expenses")
		return
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":   c.Query("startDate"),
		"endDate":     c.Query("endDate"),
		"totalCount":  len(expenses),
		"totalAmount": total.StringFixed(2),
		"expenses":    expenses,
	})
}

// ExportExcel exports a date range as an Excel workbook.
// @Summary Export expenses as Excel
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param startDate query string true "inclusive start date (YYYY-MM-DD)"
// @Param endDate query string true "inclusive end date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	filter, ok := h.exportRange(c)
	if !ok {
		return
	}
	expenses, err := h.fetchAll(c, owner, filter)
	if err != nil {
		logger.Error("export excel", zap.Error(err))
		InternalError(c, "Failed to export expenses")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Amount", "Category", "Description", "Date", "Receipt", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	total := decimal.Zero
	for rowIdx, e := range expenses {
		total = total.Add(e.Amount)
		values := []interface{}{
			e.ID,
			e.Amount.StringFixed(2),
			e.Category,
			e.Description,
			e.Date.Format("2006-01-02"),
			e.ReceiptURL,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	// Totals row under the data.
	totalRow := len(expenses) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	f.SetCellValue(sheet, cell, "Total")
	cell, _ = excelize.CoordinatesToCellName(2, totalRow)
	f.SetCellValue(sheet, cell, total.StringFixed(2))

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("write excel", zap.Error(err))
		InternalError(c, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", c.Query("startDate"), c.Query("endDate"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
