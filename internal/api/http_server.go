package api

import (
	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/model"
	"portfolio/internal/service"
	"portfolio/internal/storage"
	"time"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	repo        model.Repository
	storage     storage.Storage
	authManager *auth.Manager

	// 服务层
	projectService *service.ProjectService
	authService    *service.AuthService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, expiry)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:         cfg,
		repo:        repo,
		storage:     store,
		authManager: authManager,
		projectService: service.NewProjectService(repo, store, service.ProjectOptions{
			PublicBaseURL:  cfg.StoragePublicBaseURL,
			MaxUploadBytes: cfg.UploadMaxBytes,
		}),
		authService: service.NewAuthService(repo, authManager),
	}, nil
}
