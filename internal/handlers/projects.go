package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"estate-listing-backend/internal/dispatch"
	"estate-listing-backend/internal/models"
)

type ProjectsHandler struct {
	dispatcher *dispatch.Dispatcher
}

func NewProjectsHandler(dispatcher *dispatch.Dispatcher) *ProjectsHandler {
	return &ProjectsHandler{dispatcher: dispatcher}
}

// SubmitProject forwards a builder project submission to the marketplace.
// The request is JSON, or multipart with a "project" JSON field plus
// brochure/gallery files; the upstream call falls back to JSON when the
// backend refuses multipart.
func (h *ProjectsHandler) SubmitProject(c *gin.Context) {
	var req models.ProjectRequest
	var files []dispatch.ProjectFile

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to parse multipart form",
				Message: err.Error(),
			})
			return
		}
		if err := bindProjectField(c.Request.FormValue("project"), &req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid project payload",
				Message: err.Error(),
			})
			return
		}
		for field, headers := range c.Request.MultipartForm.File {
			for _, header := range headers {
				src, err := header.Open()
				if err != nil {
					c.JSON(http.StatusBadRequest, models.ErrorResponse{
						Error:   "failed to open file",
						Message: err.Error(),
					})
					return
				}
				data, err := io.ReadAll(src)
				src.Close()
				if err != nil {
					c.JSON(http.StatusBadRequest, models.ErrorResponse{
						Error:   "failed to read file",
						Message: err.Error(),
					})
					return
				}
				files = append(files, dispatch.ProjectFile{
					FieldName: field,
					Filename:  header.Filename,
					Data:      data,
				})
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request body",
				Message: err.Error(),
			})
			return
		}
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project name is required"})
		return
	}

	projectID, err := h.dispatcher.SubmitProject(c.Request.Context(), dispatch.ProjectSubmission{
		Name:           req.Name,
		Builder:        req.Builder,
		ReraNumber:     req.ReraNumber,
		Location:       req.Location,
		City:           req.City,
		PriceMin:       req.PriceMin,
		PriceMax:       req.PriceMax,
		Amenities:      req.Amenities,
		PossessionDate: req.PossessionDate,
	}, files)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "project submission failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.ProjectResponse{ProjectID: projectID})
}

func bindProjectField(raw string, req *models.ProjectRequest) error {
	if raw == "" {
		return fmt.Errorf("missing project field")
	}
	return json.Unmarshal([]byte(raw), req)
}
