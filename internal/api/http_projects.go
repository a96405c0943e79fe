package api

import (
	"context"
	"fmt"
	"net/http"
	"portfolio/internal/entity/dto"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListProjects(c *gin.Context) {
	var query dto.ProjectListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := h.projectService.List(ctx, query)
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HTTPHandler) SearchProjects(c *gin.Context) {
	var query dto.ProjectSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	page, err := h.projectService.Search(ctx, query)
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *HTTPHandler) GetProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	project, err := h.projectService.Get(ctx, id)
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	if project == nil {
		NotFound(c, ErrCodeProjectNotFound, fmt.Sprintf("Project with id %d not found.", id))
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *HTTPHandler) CreateProject(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	project, err := h.projectService.Create(ctx, req)
	if err != nil {
		WriteServiceError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/projects/%d", project.ID))
	c.JSON(http.StatusCreated, project)
}

func (h *HTTPHandler) UpdateProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	project, err := h.projectService.Update(ctx, id, req)
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *HTTPHandler) DeleteProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.projectService.Delete(ctx, id); err != nil {
		WriteServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ListTags(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tags, err := h.projectService.ListTags(ctx)
	if err != nil {
		WriteServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// parseIDParam 解析路径中的正整数 id，失败时直接写入 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
