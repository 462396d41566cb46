package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// MemoryTokenRepository 内存实现的代币仓储（用于开发/测试）
type MemoryTokenRepository struct {
	mu      sync.RWMutex
	records map[string]*entity.TokenRecord
}

// NewMemoryTokenRepository 创建内存代币仓储
func NewMemoryTokenRepository() repository.TokenRepository {
	return &MemoryTokenRepository{
		records: make(map[string]*entity.TokenRecord),
	}
}

// Save 记录代币 (按 token_id upsert)
func (r *MemoryTokenRepository) Save(ctx context.Context, record *entity.TokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	r.records[record.TokenID] = &copied
	return nil
}

// FindByTokenID 按代币ID查找
func (r *MemoryTokenRepository) FindByTokenID(ctx context.Context, tokenID string) (*entity.TokenRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[tokenID]
	if !ok {
		return nil, errors.NewNotFoundError("token not found")
	}
	copied := *record
	return &copied, nil
}

// List 按创建时间倒序返回代币记录
func (r *MemoryTokenRepository) List(ctx context.Context, limit int) ([]*entity.TokenRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.TokenRecord, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
