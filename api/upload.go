package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expensetracker/logger"
	"expensetracker/middleware"
	"expensetracker/service"
)

// UploadHandler serves receipt image uploads. Storage is an external
// collaborator; only the returned reference is ever persisted, by a later
// expense create or update.
type UploadHandler struct {
	storage  service.ReceiptStorage
	maxBytes int64
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(storage service.ReceiptStorage, maxBytes int64) *UploadHandler {
	return &UploadHandler{storage: storage, maxBytes: maxBytes}
}

var allowedReceiptTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
}

// UploadReceipt validates and stores a receipt image.
// @Summary Upload receipt
// @Description Stores a receipt image and returns its reference. PNG, JPG and GIF up to 5 MiB.
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param receipt formData file true "receipt image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/upload-receipt [post]
func (h *UploadHandler) UploadReceipt(c *gin.Context) {
	owner := middleware.GetCurrentSubject(c)

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		BadRequest(c, "No file provided")
		return
	}

	if fileHeader.Size > h.maxBytes {
		BadRequest(c, "File size exceeds 5MB limit")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedReceiptTypes[contentType] {
		BadRequest(c, "Invalid file type. Only PNG, JPG, and GIF are allowed.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("open uploaded file", zap.Error(err))
		InternalError(c, "Failed to upload receipt")
		return
	}
	defer file.Close()

	obj, err := h.storage.Store(owner, fileHeader.Filename, contentType, file)
	if err != nil {
		logger.Error("store receipt", zap.Error(err))
		InternalError(c, "Failed to upload receipt")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     obj.URL,
		"key":     obj.Key,
	})
}
