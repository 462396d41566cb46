package models

import (
	"time"

	"gorm.io/gorm"
)

// TokenModel 数据库代币记录模型
type TokenModel struct {
	TokenID       string `gorm:"primaryKey;size:32"`
	Name          string `gorm:"size:100;not null"`
	Symbol        string `gorm:"size:32;not null"`
	Decimals      uint32
	InitialSupply uint64
	MaxSupply     int64 // 0 = 无限供应
	TransactionID string `gorm:"size:64"`
	MirrorTxHash  string `gorm:"size:66"` // 注册表镜像交易哈希, 失败时为空
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (TokenModel) TableName() string {
	return "tokens"
}
