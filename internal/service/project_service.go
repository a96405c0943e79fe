package service

import (
	"context"
	"errors"
	"fmt"
	"portfolio/internal/entity/converter"
	"portfolio/internal/entity/db"
	"portfolio/internal/entity/dto"
	"portfolio/internal/metrics"
	"portfolio/internal/model"
	"portfolio/internal/storage"
	"portfolio/internal/utils"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxTitleLength   = 200
	maxTagNameLength = 100
	defaultUploadMax = 10 << 20
)

// ProjectOptions 项目服务的可选配置。
type ProjectOptions struct {
	// PublicBaseURL 是上传文件的公共访问前缀，默认 /uploads。
	PublicBaseURL  string
	MaxUploadBytes int64
}

// ProjectService 封装项目聚合、标签和截图相关的业务逻辑
type ProjectService struct {
	repo       model.Repository
	storage    storage.Storage
	publicBase string
	maxUpload  int64
}

// NewProjectService 创建项目服务实例
func NewProjectService(repo model.Repository, store storage.Storage, opts ProjectOptions) *ProjectService {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultUploadMax
	}
	return &ProjectService{
		repo:       repo,
		storage:    store,
		publicBase: NormalisePublicBase(opts.PublicBaseURL),
		maxUpload:  maxUpload,
	}
}

// NormalisePublicBase 规范化公共 URL 基础路径
func NormalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/uploads"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// Create 创建项目，标签按名称复用或新建
func (s *ProjectService) Create(ctx context.Context, req dto.ProjectRequest) (*dto.ProjectResponse, error) {
	fields, tags, err := validateProjectRequest(req)
	if err != nil {
		return nil, err
	}

	project := &db.Project{
		Title:       fields.Title,
		Description: fields.Description,
		LiveURL:     fields.LiveURL,
		SourceURL:   fields.SourceURL,
		Screenshots: converter.ScreenshotsFromDTOs(0, req.Screenshots),
	}
	created, err := s.repo.CreateProject(ctx, project, tags)
	if err != nil {
		return nil, InternalError("failed to create project", err)
	}

	logrus.WithFields(logrus.Fields{
		"project_id": created.ID,
		"tags":       len(created.Tags),
	}).Info("project created")

	resp := converter.ProjectToResponse(created)
	return &resp, nil
}

// Get returns nil without an error when the project does not exist.
func (s *ProjectService) Get(ctx context.Context, id uint) (*dto.ProjectResponse, error) {
	project, err := s.repo.GetProject(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, InternalError("failed to load project", err)
	}
	resp := converter.ProjectToResponse(project)
	return &resp, nil
}

// List 分页列出项目，可按标签过滤
func (s *ProjectService) List(ctx context.Context, query dto.ProjectListQuery) (*dto.PagedProjects, error) {
	page, pageSize := query.BaseParams.Resolve()
	return s.page(ctx, db.ProjectQuery{
		Page:     page,
		PageSize: pageSize,
		Tag:      strings.TrimSpace(query.Tag),
	})
}

// Search 按标题子串（大小写敏感）和标签组合过滤
func (s *ProjectService) Search(ctx context.Context, query dto.ProjectSearchQuery) (*dto.PagedProjects, error) {
	page, pageSize := query.BaseParams.Resolve()
	return s.page(ctx, db.ProjectQuery{
		Page:     page,
		PageSize: pageSize,
		Title:    query.Title,
		Tag:      strings.TrimSpace(query.Tag),
	})
}

func (s *ProjectService) page(ctx context.Context, query db.ProjectQuery) (*dto.PagedProjects, error) {
	var fields []FieldError
	if query.Page < 1 {
		fields = append(fields, FieldError{Field: "page", Message: "must be at least 1"})
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		fields = append(fields, FieldError{Field: "pageSize", Message: "must be between 1 and 100"})
	}
	if len(fields) > 0 {
		return nil, ValidationError("invalid pagination", fields...)
	}

	projects, meta, err := s.repo.ListProjects(ctx, query)
	if err != nil {
		return nil, InternalError("failed to list projects", err)
	}
	return &dto.PagedProjects{
		Items: converter.ProjectsToResponses(projects),
		Meta:  meta,
	}, nil
}

// Update 全量替换项目的标量字段、标签和截图
func (s *ProjectService) Update(ctx context.Context, id uint, req dto.ProjectRequest) (*dto.ProjectResponse, error) {
	fields, tags, err := validateProjectRequest(req)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProject(ctx, id, fields, tags, converter.ScreenshotsFromDTOs(id, req.Screenshots))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, projectNotFound(id)
	}
	if err != nil {
		return nil, InternalError("failed to update project", err)
	}

	resp := converter.ProjectToResponse(updated)
	return &resp, nil
}

// Delete 删除项目及其截图记录，已上传的文件保留
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	err := s.repo.DeleteProject(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return projectNotFound(id)
	}
	if err != nil {
		return InternalError("failed to delete project", err)
	}
	logrus.WithField("project_id", id).Info("project deleted")
	return nil
}

// ListTags 列出全部标签
func (s *ProjectService) ListTags(ctx context.Context) ([]dto.TagResponse, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, InternalError("failed to list tags", err)
	}
	return converter.TagsToResponses(tags), nil
}

// ScreenshotUpload 是一次截图上传的输入。
type ScreenshotUpload struct {
	FileName  string
	Data      []byte
	AltText   *string
	SortOrder int
}

// UploadScreenshot stores the file under {projectID}/{uuid}.{ext} and records
// a screenshot pointing at its public URL. The project is checked first so
// nothing is written for a missing project.
func (s *ProjectService) UploadScreenshot(ctx context.Context, projectID uint, upload ScreenshotUpload) (*dto.ScreenshotDTO, error) {
	var fields []FieldError
	if len(upload.Data) == 0 {
		fields = append(fields, FieldError{Field: "file", Message: "file is required"})
	} else if int64(len(upload.Data)) > s.maxUpload {
		fields = append(fields, FieldError{Field: "file", Message: fmt.Sprintf("file exceeds %d bytes", s.maxUpload)})
	}
	if upload.SortOrder < 0 {
		fields = append(fields, FieldError{Field: "sortOrder", Message: "must be zero or greater"})
	}
	if len(fields) > 0 {
		return nil, ValidationError("invalid screenshot upload", fields...)
	}

	exists, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, InternalError("failed to load project", err)
	}
	if !exists {
		return nil, projectNotFound(projectID)
	}

	key, err := s.storage.Save(ctx, upload.Data, storage.SaveOptions{
		Dir:       strconv.FormatUint(uint64(projectID), 10),
		BaseName:  uuid.NewString(),
		Extension: utils.UploadExtension(upload.FileName, upload.Data),
	})
	if err != nil {
		return nil, InternalError("failed to store file", err)
	}

	screenshot := &db.Screenshot{
		ProjectID: projectID,
		URL:       s.publicURL(key),
		AltText:   normaliseOptional(upload.AltText),
		SortOrder: upload.SortOrder,
	}
	if err := s.repo.CreateScreenshot(ctx, screenshot); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logrus.WithError(delErr).WithField("key", key).Warn("failed to remove orphaned upload")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, projectNotFound(projectID)
		}
		return nil, InternalError("failed to save screenshot", err)
	}

	metrics.ScreenshotsUploaded.Inc()
	logrus.WithFields(logrus.Fields{
		"project_id":    projectID,
		"screenshot_id": screenshot.ID,
		"key":           key,
		"bytes":         len(upload.Data),
	}).Info("screenshot uploaded")

	result := converter.ScreenshotToDTO(screenshot)
	return &result, nil
}

// DeleteScreenshot 先删除截图记录，URL 指向本服务存储时再尽力删除文件
func (s *ProjectService) DeleteScreenshot(ctx context.Context, projectID, screenshotID uint) error {
	screenshot, err := s.repo.GetScreenshot(ctx, projectID, screenshotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return screenshotNotFound(projectID, screenshotID)
	}
	if err != nil {
		return InternalError("failed to load screenshot", err)
	}

	err = s.repo.DeleteScreenshot(ctx, projectID, screenshotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return screenshotNotFound(projectID, screenshotID)
	}
	if err != nil {
		return InternalError("failed to delete screenshot", err)
	}

	// 记录已删除，文件删除失败只记日志
	if key, ok := s.storageKey(screenshot.URL); ok {
		if err := s.storage.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"project_id":    projectID,
				"screenshot_id": screenshotID,
				"key":           key,
			}).Warn("failed to remove screenshot file")
		}
	}
	return nil
}

// ReorderScreenshots 按给定顺序重新编号；未列出的截图排在其后并保持原相对顺序
func (s *ProjectService) ReorderScreenshots(ctx context.Context, projectID uint, ids []uint) ([]dto.ScreenshotDTO, error) {
	seen := make(map[uint]int, len(ids))
	var fields []FieldError
	for i, id := range ids {
		if first, dup := seen[id]; dup {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("[%d]", i),
				Message: fmt.Sprintf("duplicate screenshot id %d (first at [%d])", id, first),
			})
			continue
		}
		seen[id] = i
	}
	if len(fields) > 0 {
		return nil, ValidationError("screenshot ids must be unique", fields...)
	}

	exists, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, InternalError("failed to load project", err)
	}
	if !exists {
		return nil, projectNotFound(projectID)
	}

	shots, err := s.repo.ReorderScreenshots(ctx, projectID, ids)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindNotFound, Message: fmt.Sprintf("Screenshot not found for project %d.", projectID), Err: err}
	}
	if err != nil {
		return nil, InternalError("failed to reorder screenshots", err)
	}
	return converter.ScreenshotsToDTOs(shots), nil
}

func (s *ProjectService) publicURL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

// storageKey 从截图 URL 还原存储键，外部 URL 返回 false。
func (s *ProjectService) storageKey(url string) (string, bool) {
	prefix := s.publicBase + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

func validateProjectRequest(req dto.ProjectRequest) (db.ProjectFields, []string, error) {
	var fields []FieldError

	title := strings.TrimSpace(req.Title)
	switch {
	case title == "":
		fields = append(fields, FieldError{Field: "title", Message: "title is required"})
	case utf8.RuneCountInString(title) > maxTitleLength:
		fields = append(fields, FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength)})
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		fields = append(fields, FieldError{Field: "description", Message: "description is required"})
	}

	tags := make([]string, 0, len(req.Tags))
	for i, name := range req.Tags {
		trimmed := strings.TrimSpace(name)
		switch {
		case trimmed == "":
			fields = append(fields, FieldError{Field: fmt.Sprintf("tags[%d]", i), Message: "tag name must not be empty"})
		case utf8.RuneCountInString(trimmed) > maxTagNameLength:
			fields = append(fields, FieldError{Field: fmt.Sprintf("tags[%d]", i), Message: fmt.Sprintf("tag name must be at most %d characters", maxTagNameLength)})
		default:
			tags = append(tags, trimmed)
		}
	}

	for i, shot := range req.Screenshots {
		if strings.TrimSpace(shot.URL) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("screenshots[%d].url", i), Message: "url is required"})
		}
		if shot.SortOrder < 0 {
			fields = append(fields, FieldError{Field: fmt.Sprintf("screenshots[%d].sortOrder", i), Message: "must be zero or greater"})
		}
	}

	if len(fields) > 0 {
		return db.ProjectFields{}, nil, ValidationError("validation failed", fields...)
	}
	return db.ProjectFields{
		Title:       title,
		Description: req.Description,
		LiveURL:     normaliseOptional(req.LiveURL),
		SourceURL:   normaliseOptional(req.SourceURL),
	}, tags, nil
}

// normaliseOptional 把空白字符串视为未提供。
func normaliseOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func projectNotFound(id uint) *Error {
	err := NotFoundError(fmt.Sprintf("Project with id %d not found.", id))
	err.Resource = ResourceProject
	return err
}

func screenshotNotFound(projectID, screenshotID uint) *Error {
	err := NotFoundError(fmt.Sprintf("Screenshot with id %d not found for project %d.", screenshotID, projectID))
	err.Resource = ResourceScreenshot
	return err
}
