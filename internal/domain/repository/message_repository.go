package repository

import (
	"context"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
)

// MessageRepository 会话存储接口
// 每个线程恰好一条会话; 线程内消息 append-only, 不得伪造或重排。
type MessageRepository interface {
	// Save 追加一条消息
	Save(ctx context.Context, message *entity.Message) error

	// FindByThreadID 按时间顺序返回线程内的消息
	FindByThreadID(ctx context.Context, threadID string, limit int) ([]*entity.Message, error)

	// Count 统计线程中的消息数量
	Count(ctx context.Context, threadID string) (int64, error)

	// Clear 清空线程 (开启新会话)
	Clear(ctx context.Context, threadID string) error
}
