package usecase

import (
	"context"

	"go.uber.org/zap"

	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// PurchaseCommand 代币购买请求
// 买家在外链 (EVM) 上付款, 凭支付证明换取账本上的代币。
type PurchaseCommand struct {
	TokenID string
	Amount  int64
	Proof   domainledger.PaymentProof
}

// PurchaseResult 购买结果
type PurchaseResult struct {
	TokenID               string
	BuyerAccountID        string
	MintTransactionID     string
	TransferTransactionID string
}

// ProcessPurchaseUseCase 处理购买: 解析买家账户 → 铸造 → 转账。
// 铸造与转账不是原子操作: 转账失败时已铸造的代币留在金库中,
// 需要人工处理 — 流程绝不自动重试。
type ProcessPurchaseUseCase struct {
	gateway  domainledger.Gateway
	resolver domainledger.AccountResolver
	logger   *zap.Logger
}

// NewProcessPurchaseUseCase 创建购买用例
func NewProcessPurchaseUseCase(
	gateway domainledger.Gateway,
	resolver domainledger.AccountResolver,
	logger *zap.Logger,
) *ProcessPurchaseUseCase {
	return &ProcessPurchaseUseCase{
		gateway:  gateway,
		resolver: resolver,
		logger:   logger,
	}
}

// Execute mints the purchased amount to the treasury and transfers it to
// the buyer's ledger account.
func (uc *ProcessPurchaseUseCase) Execute(ctx context.Context, cmd PurchaseCommand) (*PurchaseResult, error) {
	if cmd.TokenID == "" {
		return nil, errors.NewValidationError("tokenId", "missing")
	}
	if cmd.Amount <= 0 {
		return nil, errors.NewValidationError("amount", "range")
	}
	if !cmd.Proof.Valid() {
		return nil, errors.NewValidationError("paymentProof", "missing")
	}

	// TODO: verify the payment transaction on the foreign chain before minting.
	// The proof is currently recorded but trusted as-is.

	buyer, err := uc.resolver.ResolveAccount(ctx, cmd.Proof.Payer)
	if err != nil {
		return nil, err
	}
	if buyer == "" {
		return nil, errors.NewNotFoundError("no ledger account is mapped to the payer address")
	}

	uc.logger.Info("Processing token purchase",
		zap.String("token_id", cmd.TokenID),
		zap.Int64("amount", cmd.Amount),
		zap.String("buyer", buyer),
		zap.String("payment_tx", cmd.Proof.TxHash),
	)

	mintReceipt, err := uc.gateway.Mint(ctx, cmd.TokenID, uint64(cmd.Amount))
	if err != nil {
		uc.logger.Error("Purchase mint failed",
			zap.String("token_id", cmd.TokenID),
			zap.Error(err),
		)
		return nil, err
	}

	transferReceipt, err := uc.gateway.Transfer(ctx, cmd.TokenID, "", buyer, cmd.Amount)
	if err != nil {
		// 已铸造但未送达 — 代币留在金库, 记录上下文供人工处理。
		uc.logger.Error("Purchase transfer failed after mint",
			zap.String("token_id", cmd.TokenID),
			zap.String("buyer", buyer),
			zap.String("mint_transaction_id", mintReceipt.TransactionID),
			zap.Error(err),
		)
		return nil, err
	}

	return &PurchaseResult{
		TokenID:               cmd.TokenID,
		BuyerAccountID:        buyer,
		MintTransactionID:     mintReceipt.TransactionID,
		TransferTransactionID: transferReceipt.TransactionID,
	}, nil
}
