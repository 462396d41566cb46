package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/persistence/models"
	domainErrors "github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// GormMessageRepository GORM 实现的消息仓储
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GORM 消息仓储
func NewGormMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &GormMessageRepository{
		db: db,
	}
}

// Save 追加一条消息
func (r *GormMessageRepository) Save(ctx context.Context, message *entity.Message) error {
	model := r.toModel(message)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domainErrors.NewInternalError("failed to save message", err)
	}
	return nil
}

// FindByThreadID 按时间顺序返回线程内的消息
func (r *GormMessageRepository) FindByThreadID(ctx context.Context, threadID string, limit int) ([]*entity.Message, error) {
	var rows []models.MessageModel
	query := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, domainErrors.NewInternalError("failed to find messages", err)
	}

	messages := make([]*entity.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, r.toEntity(&row))
	}
	return messages, nil
}

// Count 统计线程中的消息数量
func (r *GormMessageRepository) Count(ctx context.Context, threadID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("thread_id = ?", threadID).
		Count(&count).Error

	if err != nil {
		return 0, domainErrors.NewInternalError("failed to count messages", err)
	}
	return count, nil
}

// Clear 清空线程
func (r *GormMessageRepository) Clear(ctx context.Context, threadID string) error {
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Delete(&models.MessageModel{}).Error

	if err != nil {
		return domainErrors.NewInternalError("failed to clear thread", err)
	}
	return nil
}

// 转换方法

func (r *GormMessageRepository) toModel(message *entity.Message) *models.MessageModel {
	return &models.MessageModel{
		ID:         message.ID(),
		ThreadID:   message.ThreadID(),
		Role:       string(message.Role()),
		Content:    message.Content(),
		ToolCallID: message.ToolCallID(),
		ToolName:   message.ToolName(),
		CreatedAt:  message.CreatedAt(),
	}
}

func (r *GormMessageRepository) toEntity(model *models.MessageModel) *entity.Message {
	return entity.ReconstructMessage(
		model.ID,
		model.ThreadID,
		entity.Role(model.Role),
		model.Content,
		model.ToolCallID,
		model.ToolName,
		model.CreatedAt,
	)
}
