package sql

import (
	"context"
	"fmt"
	"portfolio/internal/entity/common"
	"portfolio/internal/entity/db"
	"strings"
	"time"

	"gorm.io/gorm"
)

func preloadAggregate(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Tags").
		Preload("Screenshots", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, id ASC")
		})
}

// CreateProject inserts the project with its inline screenshots and resolved
// tags in one transaction and returns the reloaded aggregate.
func (r *GormRepository) CreateProject(ctx context.Context, project *db.Project, tagNames []string) (*db.Project, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if project == nil {
		return nil, fmt.Errorf("project is nil")
	}

	var created db.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}

		project.ID = 0
		if project.CreatedAt.IsZero() {
			project.CreatedAt = time.Now().UTC()
		}
		project.Tags = tags
		for i := range project.Screenshots {
			project.Screenshots[i].ID = 0
		}

		// 标签已在 resolveTags 中持久化，这里只写关联行
		if err := tx.Omit("Tags.*").Create(project).Error; err != nil {
			return err
		}
		return preloadAggregate(tx).First(&created, project.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetProject loads a project with tags and screenshots ordered by sort order.
func (r *GormRepository) GetProject(ctx context.Context, id uint) (*db.Project, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var project db.Project
	if err := preloadAggregate(r.db.WithContext(ctx)).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectExists reports whether a project row with the id exists.
func (r *GormRepository) ProjectExists(ctx context.Context, id uint) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListProjects returns one page of projects, newest first. The total is
// counted before the page window is applied.
func (r *GormRepository) ListProjects(ctx context.Context, params db.ProjectQuery) ([]db.Project, common.Meta, error) {
	if r == nil || r.db == nil {
		return nil, common.Meta{}, fmt.Errorf("repository not initialised")
	}
	if params.Page <= 0 || params.PageSize <= 0 {
		return nil, common.Meta{}, fmt.Errorf("invalid pagination: page=%d page_size=%d", params.Page, params.PageSize)
	}

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&db.Project{})
		if params.Title != "" {
			query = r.applyTitleFilter(query, params.Title)
		}
		if tag := strings.TrimSpace(params.Tag); tag != "" {
			query = query.Where(
				"EXISTS (SELECT 1 FROM project_tags JOIN tags ON tags.id = project_tags.tag_id WHERE project_tags.project_id = projects.id AND tags.name = ?)",
				tag,
			)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, common.Meta{}, err
	}

	meta := common.NewMeta(total, params.Page, params.PageSize)

	projects := []db.Project{}
	// 超出最后一页时直接返回空列表，避免大页码的偏移量溢出
	if meta.PastEnd() {
		return projects, meta, nil
	}
	if err := preloadAggregate(filtered()).
		Order("projects.created_at DESC, projects.id DESC").
		Offset(meta.Offset()).
		Limit(meta.PageSize).
		Find(&projects).Error; err != nil {
		return nil, common.Meta{}, err
	}

	return projects, meta, nil
}

// applyTitleFilter adds a case-sensitive substring match on the title.
func (r *GormRepository) applyTitleFilter(query *gorm.DB, title string) *gorm.DB {
	switch r.dialect() {
	case "mysql":
		return query.Where("INSTR(BINARY projects.title, ?) > 0", title)
	case "postgres":
		return query.Where("strpos(projects.title, ?) > 0", title)
	default:
		return query.Where("instr(projects.title, ?) > 0", title)
	}
}

// UpdateProject overwrites the scalar fields, rebuilds the tag set and
// replaces all screenshots in a single transaction.
func (r *GormRepository) UpdateProject(ctx context.Context, id uint, fields db.ProjectFields, tagNames []string, screenshots []db.Screenshot) (*db.Project, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var updated db.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project db.Project
		if err := tx.First(&project, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":       fields.Title,
			"description": fields.Description,
			"live_url":    fields.LiveURL,
			"source_url":  fields.SourceURL,
			"updated_at":  time.Now().UTC(),
		}
		if err := tx.Model(&db.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		tags, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&db.ProjectTag{}).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			links := make([]db.ProjectTag, 0, len(tags))
			for _, tag := range tags {
				links = append(links, db.ProjectTag{ProjectID: id, TagID: tag.ID})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}

		if err := replaceScreenshots(tx, id, screenshots); err != nil {
			return err
		}

		return preloadAggregate(tx).First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject removes the project, its screenshots and its tag links. Tag
// rows stay.
func (r *GormRepository) DeleteProject(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project db.Project
		if err := tx.Select("id").First(&project, id).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&db.Screenshot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&db.ProjectTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
