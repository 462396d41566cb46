package repository

import (
	"context"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
)

// TokenRepository 已创建代币的本地缓存接口
// 链上注册表是发现机制的事实来源; 本地缓存服务于列表页与 CLI。
type TokenRepository interface {
	// Save 记录一个新创建的代币
	Save(ctx context.Context, record *entity.TokenRecord) error

	// FindByTokenID 按代币ID查找
	FindByTokenID(ctx context.Context, tokenID string) (*entity.TokenRecord, error)

	// List 按创建时间倒序返回代币记录
	List(ctx context.Context, limit int) ([]*entity.TokenRecord, error)
}
