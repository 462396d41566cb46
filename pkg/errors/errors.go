package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

const (
	// CodeConfiguration 启动配置缺失 — 进程级致命错误
	CodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// CodeValidation 工具参数校验失败 — 在任何网络调用之前拦截
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	// CodeNetwork 传输层失败 (超时/连接)
	CodeNetwork ErrorCode = "NETWORK_ERROR"
	// CodeOperation 账本拒绝操作 (回执状态非 SUCCESS) — 终态失败, 不重试
	CodeOperation ErrorCode = "OPERATION_ERROR"
	// CodeMirrorWrite 注册表镜像写入失败 — 仅记录日志, 永不上抛给用户
	CodeMirrorWrite ErrorCode = "MIRROR_WRITE_ERROR"
	// CodeNotFound 资源未找到
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeInternal 内部错误
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode
	Message string
	// Param 触发校验失败的参数名 (仅 CodeValidation)
	Param string
	// Reason 校验失败原因: "missing" | "type" | "range" (仅 CodeValidation)
	Reason string
	Err    error
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Code == CodeValidation && e.Param != "" {
		return fmt.Sprintf("[%s] %s: parameter %q (%s)", e.Code, e.Message, e.Param, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigurationError 创建配置错误 (启动期致命)
func NewConfigurationError(message string) *AppError {
	return &AppError{Code: CodeConfiguration, Message: message}
}

// NewValidationError 创建参数校验错误
func NewValidationError(param, reason string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "invalid tool arguments",
		Param:   param,
		Reason:  reason,
	}
}

// NewNetworkError 创建网络错误
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{Code: CodeNetwork, Message: message, Err: cause}
}

// NewOperationError 创建账本操作错误
func NewOperationError(message string) *AppError {
	return &AppError{Code: CodeOperation, Message: message}
}

// NewMirrorWriteError 创建镜像写入错误
func NewMirrorWriteError(message string, cause error) *AppError {
	return &AppError{Code: CodeMirrorWrite, Message: message, Err: cause}
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewInternalError 创建内部错误
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: cause}
}

// CodeOf 返回错误的错误码, 非 AppError 返回 CodeInternal
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsValidation 判断是否为参数校验错误
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsOperation 判断是否为账本操作错误
func IsOperation(err error) bool {
	return CodeOf(err) == CodeOperation
}

// IsConfiguration 判断是否为配置错误
func IsConfiguration(err error) bool {
	return CodeOf(err) == CodeConfiguration
}
