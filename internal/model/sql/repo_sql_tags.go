package sql

import (
	"context"
	"fmt"
	"portfolio/internal/entity/db"
	"portfolio/internal/metrics"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListTags returns all tags with the number of projects referencing them.
func (r *GormRepository) ListTags(ctx context.Context) ([]db.TagUsage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var tags []db.TagUsage
	query := r.db.WithContext(ctx).
		Model(&db.Tag{}).
		Select("tags.*, COUNT(project_tags.project_id) as project_count").
		Joins("LEFT JOIN project_tags ON project_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC")

	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}

	return tags, nil
}

// normalizeTagNames trims names and drops blanks and repeats, keeping the
// first occurrence order.
func normalizeTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// resolveTags returns exactly one tag row per distinct name, inserting names
// that do not exist yet. It must run inside the caller's transaction. The
// unique index on tags.name turns concurrent inserts of the same new name into
// a no-op for the loser instead of a duplicate row.
func resolveTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	unique := normalizeTagNames(names)
	if len(unique) == 0 {
		return []db.Tag{}, nil
	}

	candidates := make([]db.Tag, 0, len(unique))
	for _, name := range unique {
		candidates = append(candidates, db.Tag{Name: name})
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidates)
	if result.Error != nil {
		return nil, fmt.Errorf("insert tags: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.TagsCreated.Add(float64(result.RowsAffected))
	}

	var existing []db.Tag
	if err := tx.Where("name IN ?", unique).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	byName := make(map[string]db.Tag, len(existing))
	for _, tag := range existing {
		byName[tag.Name] = tag
	}
	tags := make([]db.Tag, 0, len(unique))
	for _, name := range unique {
		tag, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("tag %q missing after insert", name)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
