package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"estate-listing-backend/internal/models"
	"estate-listing-backend/internal/realtime"
	"estate-listing-backend/internal/uploads"
)

// Upload stages files for one category. Validation (type, size, category
// limit) happens at selection time; rejected files are reported per file
// while the rest of the batch proceeds.
func (h *WizardHandler) Upload(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	category := uploads.Category(c.Param("category"))
	if !uploads.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown upload category %q", c.Param("category")),
		})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: "multipart form is nil",
		})
		return
	}

	var files []*multipart.FileHeader
	fieldNames := []string{"files", "file", "images", "image", "photos", "photo"}
	for _, fieldName := range fieldNames {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}

	if len(files) == 0 {
		availableFields := make([]string, 0, len(form.File))
		for fieldName := range form.File {
			availableFields = append(availableFields, fieldName)
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: fmt.Sprintf("please provide files with one of these field names: %v. Available fields in request: %v", fieldNames, availableFields),
		})
		return
	}

	if h.events != nil {
		h.events.PublishDraftEvent(w.ID, "upload_started",
			realtime.UploadStartedPayload(w.ID, string(category), len(files)))
	}

	incoming := make([]uploads.Incoming, 0, len(files))
	var rejected []uploads.Rejected
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			rejected = append(rejected, uploads.Rejected{
				Name:   file.Filename,
				Reason: fmt.Sprintf("failed to open file: %v", err),
			})
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			rejected = append(rejected, uploads.Rejected{
				Name:   file.Filename,
				Reason: fmt.Sprintf("failed to read file data: %v", err),
			})
			continue
		}

		mimeType := file.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = sniffMimeType(file.Filename)
		}
		incoming = append(incoming, uploads.Incoming{
			Name:     file.Filename,
			Size:     file.Size,
			MimeType: mimeType,
			Data:     data,
		})
	}

	accepted, trackerRejected := w.Tracker().Accept(category, incoming)
	rejected = append(rejected, trackerRejected...)

	if len(accepted) > 0 {
		h.persist(w)
		if h.events != nil {
			h.events.PublishDraftEvent(w.ID, "upload_completed",
				realtime.UploadCompletedPayload(w.ID, string(category), len(accepted)))
		}
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		SessionID: w.ID,
		Category:  category,
		Accepted:  accepted,
		Rejected:  rejected,
		Total:     w.Tracker().TotalImages(),
	})
}

// RemoveUpload deletes one staged file. Removing an id that is absent (or
// already removed) is a no-op.
func (h *WizardHandler) RemoveUpload(c *gin.Context) {
	w, ok := h.session(c)
	if !ok {
		return
	}

	category := uploads.Category(c.Param("category"))
	if !uploads.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown upload category %q", c.Param("category")),
		})
		return
	}

	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid file id"})
		return
	}

	if w.Tracker().Remove(category, fileID) {
		h.persist(w)
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		SessionID: w.ID,
		Category:  category,
		Accepted:  w.Tracker().Files(category),
		Total:     w.Tracker().TotalImages(),
	})
}

func sniffMimeType(filename string) string {
	ext := ""
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			ext = filename[i:]
			break
		}
	}
	switch ext {
	case ".png", ".PNG":
		return "image/png"
	case ".webp", ".WEBP":
		return "image/webp"
	case ".mp4", ".MP4":
		return "video/mp4"
	case ".mov", ".MOV":
		return "video/quicktime"
	default:
		return "image/jpeg"
	}
}
