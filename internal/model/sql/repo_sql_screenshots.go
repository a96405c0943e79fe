package sql

import (
	"context"
	"fmt"
	"portfolio/internal/entity/db"

	"gorm.io/gorm"
)

// replaceScreenshots deletes every screenshot of the project and inserts the
// given ones with their sort order as supplied.
func replaceScreenshots(tx *gorm.DB, projectID uint, screenshots []db.Screenshot) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&db.Screenshot{}).Error; err != nil {
		return err
	}
	if len(screenshots) == 0 {
		return nil
	}
	rows := make([]db.Screenshot, len(screenshots))
	for i, s := range screenshots {
		s.ID = 0
		s.ProjectID = projectID
		rows[i] = s
	}
	return tx.Create(&rows).Error
}

// CreateScreenshot inserts a screenshot for an existing project.
func (r *GormRepository) CreateScreenshot(ctx context.Context, screenshot *db.Screenshot) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if screenshot == nil {
		return fmt.Errorf("screenshot is nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project db.Project
		if err := tx.Select("id").First(&project, screenshot.ProjectID).Error; err != nil {
			return err
		}
		return tx.Create(screenshot).Error
	})
}

// GetScreenshot loads a screenshot scoped to its project.
func (r *GormRepository) GetScreenshot(ctx context.Context, projectID, screenshotID uint) (*db.Screenshot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var screenshot db.Screenshot
	if err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", screenshotID, projectID).
		First(&screenshot).Error; err != nil {
		return nil, err
	}
	return &screenshot, nil
}

// DeleteScreenshot removes a screenshot only when it belongs to the project.
func (r *GormRepository) DeleteScreenshot(ctx context.Context, projectID, screenshotID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", screenshotID, projectID).
		Delete(&db.Screenshot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReorderScreenshots assigns sort orders 0..n-1 to orderedIDs. Screenshots of
// the project that are not listed follow in their previous relative order, so
// the sequence stays dense. Every id is validated before anything is written;
// an unknown id fails with gorm.ErrRecordNotFound and changes nothing.
func (r *GormRepository) ReorderScreenshots(ctx context.Context, projectID uint, orderedIDs []uint) ([]db.Screenshot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var result []db.Screenshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project db.Project
		if err := tx.Select("id").First(&project, projectID).Error; err != nil {
			return err
		}

		var current []db.Screenshot
		if err := tx.Where("project_id = ?", projectID).
			Order("sort_order ASC, id ASC").
			Find(&current).Error; err != nil {
			return err
		}

		byID := make(map[uint]*db.Screenshot, len(current))
		for i := range current {
			byID[current[i].ID] = &current[i]
		}

		ordered := make([]*db.Screenshot, 0, len(current))
		listed := make(map[uint]struct{}, len(orderedIDs))
		for _, id := range orderedIDs {
			shot, ok := byID[id]
			if !ok {
				return fmt.Errorf("screenshot %d of project %d: %w", id, projectID, gorm.ErrRecordNotFound)
			}
			if _, dup := listed[id]; dup {
				continue
			}
			listed[id] = struct{}{}
			ordered = append(ordered, shot)
		}
		for i := range current {
			if _, ok := listed[current[i].ID]; !ok {
				ordered = append(ordered, &current[i])
			}
		}

		result = make([]db.Screenshot, 0, len(ordered))
		for position, shot := range ordered {
			if shot.SortOrder != position {
				if err := tx.Model(&db.Screenshot{}).
					Where("id = ?", shot.ID).
					Update("sort_order", position).Error; err != nil {
					return err
				}
				shot.SortOrder = position
			}
			result = append(result, *shot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
