package converter

import (
	"portfolio/internal/entity/db"
	"portfolio/internal/entity/dto"
)

// TagsToResponses converts tag usage rows, keeping their order.
func TagsToResponses(tags []db.TagUsage) []dto.TagResponse {
	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{
			ID:           t.ID,
			Name:         t.Name,
			ProjectCount: t.ProjectCount,
		})
	}
	return out
}
