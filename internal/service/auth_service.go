package service

import (
	"context"
	"errors"
	"fmt"
	"portfolio/internal/auth"
	"portfolio/internal/entity/converter"
	"portfolio/internal/entity/db"
	"portfolio/internal/entity/dto"
	"portfolio/internal/model"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	msgEmailTaken         = "A user with this email already exists."
	msgUsernameTaken      = "A user with this username already exists."
	msgInvalidCredentials = "Invalid email or password."
)

// AuthService 处理注册与登录并签发令牌
type AuthService struct {
	repo   model.Repository
	tokens *auth.Manager
}

// NewAuthService 创建认证服务实例
func NewAuthService(repo model.Repository, tokens *auth.Manager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register creates a user with the User role and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req dto.AuthRegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var fields []FieldError
	if username == "" {
		fields = append(fields, FieldError{Field: "username", Message: "username is required"})
	}
	if email == "" {
		fields = append(fields, FieldError{Field: "email", Message: "email is required"})
	}
	switch err := auth.CheckPasswordPolicy(req.Password); {
	case errors.Is(err, auth.ErrPasswordTooShort):
		fields = append(fields, FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength)})
	case errors.Is(err, auth.ErrPasswordTooLong):
		fields = append(fields, FieldError{Field: "password", Message: fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes)})
	}
	if len(fields) > 0 {
		return nil, ValidationError("validation failed", fields...)
	}

	emailTaken, usernameTaken, err := s.repo.UserExists(ctx, email, username)
	if err != nil {
		return nil, InternalError("failed to check user", err)
	}
	if emailTaken {
		return nil, ConflictError(msgEmailTaken)
	}
	if usernameTaken {
		return nil, ConflictError(msgUsernameTaken)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, InternalError("failed to hash password", err)
	}

	user := &db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         db.UserRoleUser,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ConflictError("A user with this email or username already exists.")
		}
		return nil, InternalError("failed to create user", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("user registered")

	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password give the same
// Unauthorized error.
func (s *AuthService) Login(ctx context.Context, req dto.AuthLoginRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, UnauthorizedError(msgInvalidCredentials)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		auth.BurnVerify(req.Password)
		return nil, UnauthorizedError(msgInvalidCredentials)
	}
	if err != nil {
		return nil, InternalError("failed to load user", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("stored password hash unusable")
		}
		return nil, UnauthorizedError(msgInvalidCredentials)
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *db.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, InternalError("failed to issue token", err)
	}
	resp := converter.UserToAuthResponse(user, token, expiresAt)
	return &resp, nil
}
