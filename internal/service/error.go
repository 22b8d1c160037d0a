package service

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorCode 错误码类型
type ErrorCode int

const (
	// 系统级错误码
	ErrSystem ErrorCode = iota + 1
	ErrConfig
	ErrDatabase
	ErrAuthentication
	ErrInvalidInput
	ErrInternal
	ErrRateLimited

	// 业务级错误码
	ErrBaniNotFound ErrorCode = iota + 1000
)

// AppError 应用程序错误
type AppError struct {
	Code    ErrorCode              // 错误码
	Message string                 // 错误消息
	Err     error                  // 原始错误
	Stack   string                 // 堆栈信息
	Context map[string]interface{} // 上下文信息
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现errors.Unwrap接口
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新的应用程序错误
func NewError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Stack:   getStack(),
		Context: make(map[string]interface{}),
	}
}

// WithContext 添加上下文信息
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// CodeOf 取出错误链上的错误码，不是 AppError 时返回 ErrInternal
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// HTTPStatus 错误码对应的 HTTP 状态码
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrBaniNotFound:
		return http.StatusNotFound
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrAuthentication:
		return http.StatusUnauthorized
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrDatabase:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// FromStore 把存储层错误转换为应用错误
func FromStore(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(code, message, err)
	}
	return NewError(ErrDatabase, "database error", err)
}

// getStack 获取当前goroutine的堆栈信息
func getStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(fmt.Sprintf("%s:%d\n", frame.File, frame.Line))
		if !more {
			break
		}
	}
	return sb.String()
}

// ErrorHandler 错误处理服务
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler 创建错误处理服务实例
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle 记录错误并返回对外的状态码和消息
func (h *ErrorHandler) Handle(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewError(ErrInternal, "internal server error", err)
	}
	status := HTTPStatus(appErr.Code)

	fields := []zap.Field{
		zap.Int("code", int(appErr.Code)),
		zap.Int("status", status),
		zap.Error(appErr),
	}
	for k, v := range appErr.Context {
		fields = append(fields, zap.Any(k, v))
	}

	// 5xx 带堆栈，其余只记警告
	if status >= http.StatusInternalServerError {
		h.logger.Error(appErr.Message, append(fields, zap.String("stack", appErr.Stack))...)
		return status, appErr.Message
	}
	h.logger.Warn(appErr.Message, fields...)
	if appErr.Err != nil && appErr.Code == ErrInvalidInput {
		return status, fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
	}
	return status, appErr.Message
}
