package model

import (
	"context"
	"portfolio/internal/entity/common"
	"portfolio/internal/entity/db"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 项目聚合
	CreateProject(ctx context.Context, project *db.Project, tagNames []string) (*db.Project, error)
	GetProject(ctx context.Context, id uint) (*db.Project, error)
	ProjectExists(ctx context.Context, id uint) (bool, error)
	ListProjects(ctx context.Context, query db.ProjectQuery) ([]db.Project, common.Meta, error)
	UpdateProject(ctx context.Context, id uint, fields db.ProjectFields, tagNames []string, screenshots []db.Screenshot) (*db.Project, error)
	DeleteProject(ctx context.Context, id uint) error

	// 标签
	ListTags(ctx context.Context) ([]db.TagUsage, error)

	// 截图
	CreateScreenshot(ctx context.Context, screenshot *db.Screenshot) error
	GetScreenshot(ctx context.Context, projectID, screenshotID uint) (*db.Screenshot, error)
	DeleteScreenshot(ctx context.Context, projectID, screenshotID uint) error
	ReorderScreenshots(ctx context.Context, projectID uint, orderedIDs []uint) ([]db.Screenshot, error)

	// 用户管理
	CreateUser(ctx context.Context, user *db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UserExists(ctx context.Context, email, username string) (emailTaken bool, usernameTaken bool, err error)

	Ping(ctx context.Context) error
}
