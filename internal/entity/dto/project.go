package dto

import (
	"portfolio/internal/entity/common"
	"time"
)

// ScreenshotDTO describes a screenshot in requests and responses.
type ScreenshotDTO struct {
	ID        uint    `json:"id"`
	URL       string  `json:"url" binding:"required"`
	AltText   *string `json:"altText"`
	SortOrder int     `json:"sortOrder" binding:"min=0"`
}

// ProjectRequest is the payload for creating or fully replacing a project.
type ProjectRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"required"`
	LiveURL     *string         `json:"liveUrl"`
	SourceURL   *string         `json:"sourceUrl"`
	Tags        []string        `json:"tags"`
	Screenshots []ScreenshotDTO `json:"screenshots" binding:"dive"`
}

// ProjectResponse is the flattened project returned to clients.
type ProjectResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	LiveURL     *string         `json:"liveUrl"`
	SourceURL   *string         `json:"sourceUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	Tags        []string        `json:"tags"`
	Screenshots []ScreenshotDTO `json:"screenshots"`
}

// ProjectListQuery binds GET /projects.
type ProjectListQuery struct {
	common.BaseParams
	Tag string `form:"tag"`
}

// ProjectSearchQuery binds GET /projects/search.
type ProjectSearchQuery struct {
	common.BaseParams
	Title string `form:"title"`
	Tag   string `form:"tag"`
}

// PagedProjects is the paged list response.
type PagedProjects struct {
	Items []ProjectResponse `json:"items"`
	common.Meta
}

// ReorderScreenshotsRequest lists screenshot ids in their desired order.
type ReorderScreenshotsRequest []uint
