package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/persistence/models"
	domainErrors "github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// GormTokenRepository GORM 实现的代币记录仓储
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository 创建 GORM 代币仓储
func NewGormTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &GormTokenRepository{
		db: db,
	}
}

// Save 记录代币 (按 token_id upsert, 镜像哈希回填时更新)
func (r *GormTokenRepository) Save(ctx context.Context, record *entity.TokenRecord) error {
	model := r.toModel(record)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			UpdateAll: true,
		}).
		Create(model).Error

	if err != nil {
		return domainErrors.NewInternalError("failed to save token record", err)
	}
	return nil
}

// FindByTokenID 按代币ID查找
func (r *GormTokenRepository) FindByTokenID(ctx context.Context, tokenID string) (*entity.TokenRecord, error) {
	var model models.TokenModel
	if err := r.db.WithContext(ctx).First(&model, "token_id = ?", tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewNotFoundError("token not found")
		}
		return nil, domainErrors.NewInternalError("failed to find token", err)
	}
	return r.toEntity(&model), nil
}

// List 按创建时间倒序返回代币记录
func (r *GormTokenRepository) List(ctx context.Context, limit int) ([]*entity.TokenRecord, error) {
	var rows []models.TokenModel
	query := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, domainErrors.NewInternalError("failed to list tokens", err)
	}

	records := make([]*entity.TokenRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, r.toEntity(&row))
	}
	return records, nil
}

// 转换方法

func (r *GormTokenRepository) toModel(record *entity.TokenRecord) *models.TokenModel {
	return &models.TokenModel{
		TokenID:       record.TokenID,
		Name:          record.Name,
		Symbol:        record.Symbol,
		Decimals:      record.Decimals,
		InitialSupply: record.InitialSupply,
		MaxSupply:     record.MaxSupply,
		TransactionID: record.TransactionID,
		MirrorTxHash:  record.MirrorTxHash,
		CreatedAt:     record.CreatedAt,
	}
}

func (r *GormTokenRepository) toEntity(model *models.TokenModel) *entity.TokenRecord {
	return &entity.TokenRecord{
		TokenID:       model.TokenID,
		Name:          model.Name,
		Symbol:        model.Symbol,
		Decimals:      model.Decimals,
		InitialSupply: model.InitialSupply,
		MaxSupply:     model.MaxSupply,
		TransactionID: model.TransactionID,
		MirrorTxHash:  model.MirrorTxHash,
		CreatedAt:     model.CreatedAt,
	}
}
