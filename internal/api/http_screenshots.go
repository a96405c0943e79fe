package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"portfolio/internal/entity/dto"
	"portfolio/internal/service"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// multipart 表单中除文件外还允许的少量字段开销
const multipartOverhead = 1 << 20

func (h *HTTPHandler) UploadScreenshot(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	maxBytes := h.cfg.UploadMaxBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			BadRequest(c, ErrCodeFileTooLarge, fmt.Sprintf("file exceeds %d bytes", maxBytes))
			return
		}
		MissingField(c, "file")
		return
	}
	if fileHeader.Size > maxBytes {
		BadRequest(c, ErrCodeFileTooLarge, fmt.Sprintf("file exceeds %d bytes", maxBytes))
		return
	}

	sortOrder := 0
	if raw := strings.TrimSpace(c.PostForm("sortOrder")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			ValidationFailed(c, "validation failed", service.FieldError{Field: "sortOrder", Message: "sortOrder must be an integer"})
			return
		}
		sortOrder = parsed
	}

	var altText *string
	if value, ok := c.GetPostForm("altText"); ok {
		altText = &value
	}

	file, err := fileHeader.Open()
	if err != nil {
		InvalidPayload(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	shot, err := h.projectService.UploadScreenshot(ctx, projectID, service.ScreenshotUpload{
		FileName:  fileHeader.Filename,
		Data:      data,
		AltText:   altText,
		SortOrder: sortOrder,
	})
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shot)
}

func (h *HTTPHandler) DeleteScreenshot(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	screenshotID, ok := parseIDParam(c, "screenshotId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := h.projectService.DeleteScreenshot(ctx, projectID, screenshotID); err != nil {
		WriteServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ReorderScreenshots(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReorderScreenshotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	shots, err := h.projectService.ReorderScreenshots(ctx, projectID, req)
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shots)
}
