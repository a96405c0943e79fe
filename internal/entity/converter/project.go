package converter

import (
	"portfolio/internal/entity/db"
	"portfolio/internal/entity/dto"
	"sort"
)

// ProjectToResponse flattens a project with its loaded tags and screenshots.
// Tag names keep the order they were loaded in; screenshots are sorted by
// SortOrder.
func ProjectToResponse(p *db.Project) dto.ProjectResponse {
	if p == nil {
		return dto.ProjectResponse{}
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Name)
	}
	return dto.ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		LiveURL:     p.LiveURL,
		SourceURL:   p.SourceURL,
		CreatedAt:   p.CreatedAt,
		Tags:        tags,
		Screenshots: ScreenshotsToDTOs(p.Screenshots),
	}
}

// ProjectsToResponses converts a slice of projects.
func ProjectsToResponses(projects []db.Project) []dto.ProjectResponse {
	out := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ProjectToResponse(&projects[i])
	}
	return out
}

// ScreenshotToDTO converts a single screenshot.
func ScreenshotToDTO(s *db.Screenshot) dto.ScreenshotDTO {
	if s == nil {
		return dto.ScreenshotDTO{}
	}
	return dto.ScreenshotDTO{
		ID:        s.ID,
		URL:       s.URL,
		AltText:   s.AltText,
		SortOrder: s.SortOrder,
	}
}

// ScreenshotsToDTOs converts screenshots and sorts them by SortOrder. The
// input slice is left untouched.
func ScreenshotsToDTOs(shots []db.Screenshot) []dto.ScreenshotDTO {
	out := make([]dto.ScreenshotDTO, len(shots))
	for i := range shots {
		out[i] = ScreenshotToDTO(&shots[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// ScreenshotsFromDTOs builds screenshot rows for a project from request
// descriptors. SortOrder and AltText are taken verbatim.
func ScreenshotsFromDTOs(projectID uint, items []dto.ScreenshotDTO) []db.Screenshot {
	out := make([]db.Screenshot, 0, len(items))
	for _, item := range items {
		out = append(out, db.Screenshot{
			ProjectID: projectID,
			URL:       item.URL,
			AltText:   item.AltText,
			SortOrder: item.SortOrder,
		})
	}
	return out
}
