package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"portfolio/internal/service"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest   = "ERR_INVALID_REQUEST"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
	ErrCodeUnauthorized     = "ERR_UNAUTHORIZED"
	ErrCodeForbidden        = "ERR_FORBIDDEN"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeConflict         = "ERR_CONFLICT"
	ErrCodeInternalError    = "ERR_INTERNAL_ERROR"

	// 认证错误码
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"

	// 资源错误码
	ErrCodeProjectNotFound    = "ERR_PROJECT_NOT_FOUND"
	ErrCodeScreenshotNotFound = "ERR_SCREENSHOT_NOT_FOUND"

	// 业务逻辑错误码
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// FieldErrors 是校验失败时 details 的结构
type FieldErrors struct {
	Fields []service.FieldError `json:"fields"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ValidationFailed(c, field+" is required", service.FieldError{Field: field, Message: field + " is required"})
}

// ValidationFailed 400 带字段列表的校验错误
func ValidationFailed(c *gin.Context, message string, fields ...service.FieldError) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidationFailed, message, FieldErrors{Fields: fields})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// WriteServiceError maps a service error kind to its status code. Anything
// that is not a *service.Error is logged and reported as a generic 500.
func WriteServiceError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
		InternalError(c, "internal server error")
		return
	}

	switch svcErr.Kind {
	case service.KindValidation:
		ValidationFailed(c, svcErr.Message, svcErr.Fields...)
	case service.KindConflict:
		ErrorResponse(c, http.StatusConflict, ErrCodeConflict, svcErr.Message)
	case service.KindUnauthorized:
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, svcErr.Message)
	case service.KindForbidden:
		Forbidden(c, svcErr.Message)
	case service.KindNotFound:
		NotFound(c, notFoundCode(svcErr.Resource), svcErr.Message)
	default:
		logrus.WithError(svcErr).WithField("path", c.FullPath()).Error("request failed")
		InternalError(c, svcErr.Message)
	}
}

func notFoundCode(resource string) string {
	switch resource {
	case service.ResourceProject:
		return ErrCodeProjectNotFound
	case service.ResourceScreenshot:
		return ErrCodeScreenshotNotFound
	default:
		return ErrCodeNotFound
	}
}

// BindError 把 gin 绑定错误转换为字段级校验错误
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]service.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, service.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: validationMessage(fe),
			})
		}
		ValidationFailed(c, "validation failed", fields...)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		ValidationFailed(c, "validation failed", service.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
		})
		return
	}

	InvalidPayload(c)
}

// fieldPath drops the struct name and untagged embedded segments, leaving the
// wire path, e.g. "screenshots[0].url".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		if r := []rune(part)[0]; unicode.IsUpper(r) {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return namespace
	}
	return strings.Join(kept, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

var registerTagNames sync.Once

// useWireFieldNames 让校验错误使用 json/form 标签名
func useWireFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					continue
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}
