package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
)

// TokenHandler 代币列表处理器
type TokenHandler struct {
	listTokensUseCase *usecase.ListTokensUseCase
	logger            *zap.Logger
}

// NewTokenHandler 创建代币处理器
func NewTokenHandler(uc *usecase.ListTokensUseCase, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{
		listTokensUseCase: uc,
		logger:            logger,
	}
}

// ListTokens 返回已创建的代币列表
func (h *TokenHandler) ListTokens(c *gin.Context) {
	listings, err := h.listTokensUseCase.Execute(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": listings})
}
