package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/service"
)

// ProcessMessageUseCase 处理一条用户消息: 加载线程历史 → 桥接推理引擎 →
// 持久化本轮产生的所有消息 → 返回聚合回复。
// Web 与 Telegram 前端都走这条路径, 只是线程ID不同。
type ProcessMessageUseCase struct {
	messageRepo  repository.MessageRepository
	bridge       *service.Bridge
	historyLimit int
	logger       *zap.Logger
}

// NewProcessMessageUseCase 创建消息处理用例
func NewProcessMessageUseCase(
	messageRepo repository.MessageRepository,
	bridge *service.Bridge,
	historyLimit int,
	logger *zap.Logger,
) *ProcessMessageUseCase {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &ProcessMessageUseCase{
		messageRepo:  messageRepo,
		bridge:       bridge,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Execute runs one conversational turn on the given thread and returns
// the aggregated reply text.
func (uc *ProcessMessageUseCase) Execute(ctx context.Context, threadID, userText string) (string, error) {
	stored, err := uc.messageRepo.FindByThreadID(ctx, threadID, uc.historyLimit)
	if err != nil {
		uc.logger.Warn("Failed to load thread history, starting empty",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
		stored = nil
	}

	history := make([]service.ChatMessage, 0, len(stored))
	for _, msg := range stored {
		history = append(history, service.ChatMessage{
			Role:       string(msg.Role()),
			Content:    msg.Content(),
			ToolCallID: msg.ToolCallID(),
			ToolName:   msg.ToolName(),
		})
	}

	reply, appended, err := uc.bridge.Run(ctx, history, userText)
	if err != nil {
		uc.logger.Error("Bridge run failed",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
		return "", err
	}

	uc.persistTurn(ctx, threadID, appended)

	return reply, nil
}

// Reset 清空线程, 开启新会话
func (uc *ProcessMessageUseCase) Reset(ctx context.Context, threadID string) error {
	return uc.messageRepo.Clear(ctx, threadID)
}

// persistTurn appends this turn's messages to the thread. Persistence
// failures are logged, not surfaced: the reply already exists and the
// thread will simply be shorter on the next load.
func (uc *ProcessMessageUseCase) persistTurn(ctx context.Context, threadID string, appended []service.ChatMessage) {
	for _, msg := range appended {
		// 纯工具调用轮次的 assistant 消息没有文本, 不入库。
		if msg.Role == string(entity.RoleAssistant) && msg.Content == "" {
			continue
		}

		var stored *entity.Message
		var err error
		if msg.Role == string(entity.RoleTool) {
			stored, err = entity.NewToolMessage(uuid.NewString(), threadID, msg.ToolCallID, msg.ToolName, msg.Content)
		} else {
			stored, err = entity.NewMessage(uuid.NewString(), threadID, entity.Role(msg.Role), msg.Content)
		}
		if err != nil {
			uc.logger.Warn("Skipping unpersistable message",
				zap.String("thread_id", threadID),
				zap.String("role", msg.Role),
				zap.Error(err),
			)
			continue
		}

		if err := uc.messageRepo.Save(ctx, stored); err != nil {
			uc.logger.Warn("Failed to persist message",
				zap.String("thread_id", threadID),
				zap.String("role", msg.Role),
				zap.Error(err),
			)
		}
	}
}
