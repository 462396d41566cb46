package persistence

import (
	"context"
	"sync"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
)

// MemoryMessageRepository 内存实现的消息仓储（用于开发/测试）
type MemoryMessageRepository struct {
	mu sync.RWMutex
	// 线程ID到消息列表的映射, 保持写入顺序
	threads map[string][]*entity.Message
}

// NewMemoryMessageRepository 创建内存消息仓储
func NewMemoryMessageRepository() repository.MessageRepository {
	return &MemoryMessageRepository{
		threads: make(map[string][]*entity.Message),
	}
}

// Save 追加一条消息
func (r *MemoryMessageRepository) Save(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.threads[message.ThreadID()] = append(r.threads[message.ThreadID()], message)
	return nil
}

// FindByThreadID 按时间顺序返回线程内的消息
func (r *MemoryMessageRepository) FindByThreadID(ctx context.Context, threadID string, limit int) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := r.threads[threadID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	out := make([]*entity.Message, len(messages))
	copy(out, messages)
	return out, nil
}

// Count 统计线程中的消息数量
func (r *MemoryMessageRepository) Count(ctx context.Context, threadID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.threads[threadID])), nil
}

// Clear 清空线程
func (r *MemoryMessageRepository) Clear(ctx context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.threads, threadID)
	return nil
}
