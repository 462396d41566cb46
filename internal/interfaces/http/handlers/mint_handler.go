package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// MintHandler 代币购买处理器
// 买家提交外链支付证明, 网关铸造并转账到买家账户。
type MintHandler struct {
	processPurchaseUseCase *usecase.ProcessPurchaseUseCase
	logger                 *zap.Logger
}

// NewMintHandler 创建购买处理器
func NewMintHandler(uc *usecase.ProcessPurchaseUseCase, logger *zap.Logger) *MintHandler {
	return &MintHandler{
		processPurchaseUseCase: uc,
		logger:                 logger,
	}
}

type MintRequest struct {
	TokenID       string `json:"tokenId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	PaymentTxHash string `json:"paymentTxHash" binding:"required"`
	PayerAddress  string `json:"payerAddress" binding:"required"`
}

type MintResponse struct {
	TokenID               string `json:"tokenId"`
	BuyerAccountID        string `json:"buyerAccountId"`
	MintTransactionID     string `json:"mintTransactionId"`
	TransferTransactionID string `json:"transferTransactionId"`
}

// Mint processes a purchase. Client-caused failures map to 4xx with a
// short reason; everything else is a generic 500.
func (h *MintHandler) Mint(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokenId, amount, paymentTxHash and payerAddress are required"})
		return
	}

	result, err := h.processPurchaseUseCase.Execute(c.Request.Context(), usecase.PurchaseCommand{
		TokenID: req.TokenID,
		Amount:  req.Amount,
		Proof: domainledger.PaymentProof{
			TxHash: req.PaymentTxHash,
			Payer:  req.PayerAddress,
		},
	})
	if err != nil {
		switch errors.CodeOf(err) {
		case errors.CodeValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase request"})
		case errors.CodeNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "No ledger account is mapped to the payer address"})
		default:
			h.logger.Error("Failed to process purchase", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process purchase"})
		}
		return
	}

	c.JSON(http.StatusOK, MintResponse{
		TokenID:               result.TokenID,
		BuyerAccountID:        result.BuyerAccountID,
		MintTransactionID:     result.MintTransactionID,
		TransferTransactionID: result.TransferTransactionID,
	})
}
