package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
)

// ChatHandler Web 聊天处理器
// 所有 Web 用户共享同一个会话线程 (沿用原部署行为)。
type ChatHandler struct {
	processMessageUseCase *usecase.ProcessMessageUseCase
	threadID              string
	logger                *zap.Logger
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(uc *usecase.ProcessMessageUseCase, threadID string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		processMessageUseCase: uc,
		threadID:              threadID,
		logger:                logger,
	}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles one conversational turn. Internal failures map to a
// generic message — raw errors never reach the client.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.processMessageUseCase.Execute(c.Request.Context(), h.threadID, req.Message)
	if err != nil {
		h.logger.Error("Failed to process chat message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

// Reset 清空共享线程, 开启新会话
func (h *ChatHandler) Reset(c *gin.Context) {
	if err := h.processMessageUseCase.Reset(c.Request.Context(), h.threadID); err != nil {
		h.logger.Error("Failed to reset chat thread", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
