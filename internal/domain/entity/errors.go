package entity

import "errors"

var (
	// Message errors
	ErrInvalidMessageID = errors.New("invalid message id")
	ErrInvalidThreadID  = errors.New("invalid thread id")
	ErrInvalidRole      = errors.New("invalid message role")

	// Token errors
	ErrInvalidTokenID = errors.New("invalid token id")

	// ErrNotFound 仓储通用未找到错误
	ErrNotFound = errors.New("record not found")
)
