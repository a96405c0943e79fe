package service

import (
	"errors"
	"fmt"
)

// Kind 枚举服务层的失败类型，HTTP 层据此映射状态码。
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
)

// FieldError 描述单个字段的校验失败。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the only error type services return to the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	// Resource 标记 NotFound 针对的资源，见 ResourceProject / ResourceScreenshot
	Resource string
	Err      error
}

const (
	ResourceProject    = "project"
	ResourceScreenshot = "screenshot"
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ValidationError 返回带字段列表的校验错误。
func ValidationError(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func ConflictError(message string) *Error {
	return newError(KindConflict, message, nil)
}

func UnauthorizedError(message string) *Error {
	return newError(KindUnauthorized, message, nil)
}

func ForbiddenError(message string) *Error {
	return newError(KindForbidden, message, nil)
}

func NotFoundError(message string) *Error {
	return newError(KindNotFound, message, nil)
}

// InternalError wraps an unexpected failure. The message is safe to show to
// clients, err is for logs.
func InternalError(message string, err error) *Error {
	return newError(KindInternal, message, err)
}

// KindOf 返回错误的类型，非 *Error 一律视为 internal。
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
