package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageModel 数据库消息模型
type MessageModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	ThreadID   string `gorm:"index;size:128;not null"`
	Role       string `gorm:"size:16;not null"` // system, user, assistant, tool
	Content    string `gorm:"type:text;not null"`
	ToolCallID string `gorm:"size:64"`
	ToolName   string `gorm:"size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (MessageModel) TableName() string {
	return "messages"
}
