package entity

import (
	"time"
)

// Role 消息角色
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message 消息实体 — 会话线程中的一条记录
// 线程是 append-only 的: 消息一旦写入不会被修改或重排。
type Message struct {
	id         string
	threadID   string
	role       Role
	content    string
	toolCallID string // role=tool 时对应的工具调用 ID
	toolName   string // role=tool 时的工具名称
	createdAt  time.Time
}

// NewMessage 创建新消息（工厂方法）
func NewMessage(id, threadID string, role Role, content string) (*Message, error) {
	if id == "" {
		return nil, ErrInvalidMessageID
	}
	if threadID == "" {
		return nil, ErrInvalidThreadID
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	return &Message{
		id:        id,
		threadID:  threadID,
		role:      role,
		content:   content,
		createdAt: time.Now(),
	}, nil
}

// NewToolMessage 创建工具结果消息
func NewToolMessage(id, threadID, toolCallID, toolName, content string) (*Message, error) {
	msg, err := NewMessage(id, threadID, RoleTool, content)
	if err != nil {
		return nil, err
	}
	msg.toolCallID = toolCallID
	msg.toolName = toolName
	return msg, nil
}

// ReconstructMessage 重建消息（用于从持久化层恢复）
func ReconstructMessage(id, threadID string, role Role, content, toolCallID, toolName string, createdAt time.Time) *Message {
	return &Message{
		id:         id,
		threadID:   threadID,
		role:       role,
		content:    content,
		toolCallID: toolCallID,
		toolName:   toolName,
		createdAt:  createdAt,
	}
}

// ID 返回消息ID
func (m *Message) ID() string { return m.id }

// ThreadID 返回会话线程ID
func (m *Message) ThreadID() string { return m.threadID }

// Role 返回消息角色
func (m *Message) Role() Role { return m.role }

// Content 返回消息内容
func (m *Message) Content() string { return m.content }

// ToolCallID 返回工具调用ID (role=tool)
func (m *Message) ToolCallID() string { return m.toolCallID }

// ToolName 返回工具名称 (role=tool)
func (m *Message) ToolName() string { return m.toolName }

// CreatedAt 返回创建时间
func (m *Message) CreatedAt() time.Time { return m.createdAt }
