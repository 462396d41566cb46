package ledger

import (
	"context"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"go.uber.org/zap"

	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// HederaGateway 账本网关 — 进程内唯一的网络 I/O 组件。
// 持有一个操作员会话, 进程生命周期内不轮换; 所有出站交易共享该身份。
type HederaGateway struct {
	client      *hedera.Client
	operatorID  hedera.AccountID
	operatorKey hedera.PrivateKey
	network     domainledger.Network
	logger      *zap.Logger
}

// Compile-time interface check
var _ domainledger.Gateway = (*HederaGateway)(nil)

// Config 网关配置
type Config struct {
	Network     string
	OperatorID  string
	OperatorKey string
}

// NewHederaGateway 创建账本网关
// 缺失操作员身份是致命配置错误, 在服务任何请求前失败。
func NewHederaGateway(cfg Config, logger *zap.Logger) (*HederaGateway, error) {
	network, err := domainledger.NetworkFromString(cfg.Network)
	if err != nil {
		return nil, errors.NewConfigurationError(err.Error())
	}

	if cfg.OperatorID == "" || cfg.OperatorKey == "" {
		return nil, errors.NewConfigurationError("operator account id and private key are required")
	}

	operatorID, err := hedera.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("invalid operator account id: %v", err))
	}

	operatorKey, err := hedera.PrivateKeyFromString(cfg.OperatorKey)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("invalid operator private key: %v", err))
	}

	var client *hedera.Client
	switch network {
	case domainledger.NetworkMainnet:
		client = hedera.ClientForMainnet()
	case domainledger.NetworkPreviewnet:
		client = hedera.ClientForPreviewnet()
	default:
		client = hedera.ClientForTestnet()
	}
	client.SetOperator(operatorID, operatorKey)

	logger.Info("Ledger session established",
		zap.String("network", string(network)),
		zap.String("operator", operatorID.String()),
	)

	return &HederaGateway{
		client:      client,
		operatorID:  operatorID,
		operatorKey: operatorKey,
		network:     network,
		logger:      logger,
	}, nil
}

// Operator 返回操作员账户ID
func (g *HederaGateway) Operator() string {
	return g.operatorID.String()
}

// CreateFungibleToken 创建同质化代币 — 每次调用恰好创建一个。
// 网关本身没有去重记忆; "同一请求最多调用一次" 由工具描述约束推理引擎。
func (g *HederaGateway) CreateFungibleToken(ctx context.Context, opts domainledger.CreateTokenOptions) (*domainledger.TokenCreation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewNetworkError("context cancelled", err)
	}

	tx := hedera.NewTokenCreateTransaction().
		SetTokenName(opts.Name).
		SetTokenSymbol(opts.Symbol).
		SetTokenType(hedera.TokenTypeFungibleCommon).
		SetDecimals(uint(opts.Decimals)).
		SetInitialSupply(opts.InitialSupply).
		SetTreasuryAccountID(g.operatorID)

	if opts.MaxSupply > 0 {
		tx.SetMaxSupply(opts.MaxSupply).SetSupplyType(hedera.TokenSupplyTypeFinite)
	}
	if len(opts.Metadata) > 0 {
		tx.SetTokenMetadata(opts.Metadata)
	}
	if opts.Memo != "" {
		tx.SetTokenMemo(opts.Memo)
	}

	// Authority roles are only ever filled by the operator's own key.
	if opts.Authorities.SupplyKey {
		tx.SetSupplyKey(g.operatorKey.PublicKey())
	}
	if opts.Authorities.AdminKey {
		tx.SetAdminKey(g.operatorKey.PublicKey())
	}
	if opts.Authorities.MetadataKey {
		tx.SetMetadataKey(g.operatorKey.PublicKey())
	}

	resp, err := tx.Execute(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token create submission failed", err)
	}

	receipt, err := resp.GetReceipt(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token create receipt unavailable", err)
	}

	if receipt.TokenID == nil {
		return nil, errors.NewOperationError("Token Create Transaction failed")
	}

	creation := &domainledger.TokenCreation{
		TokenID:       receipt.TokenID.String(),
		Status:        receipt.Status.String(),
		TransactionID: resp.TransactionID.String(),
	}

	g.logger.Info("Token created",
		zap.String("token_id", creation.TokenID),
		zap.String("transaction_id", creation.TransactionID),
	)

	return creation, nil
}

// Mint 向代币金库铸造指定数量
func (g *HederaGateway) Mint(ctx context.Context, tokenID string, amount uint64) (*domainledger.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewNetworkError("context cancelled", err)
	}

	tid, err := hedera.TokenIDFromString(tokenID)
	if err != nil {
		return nil, errors.NewValidationError("token_id", "type")
	}

	resp, err := hedera.NewTokenMintTransaction().
		SetTokenID(tid).
		SetAmount(amount).
		Execute(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token mint submission failed", err)
	}

	receipt, err := resp.GetReceipt(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token mint receipt unavailable", err)
	}

	if err := checkReceiptStatus(receipt.Status.String(), "Token Minting Transaction failed"); err != nil {
		return nil, err
	}

	return &domainledger.Receipt{
		Status:        receipt.Status.String(),
		TransactionID: resp.TransactionID.String(),
	}, nil
}

// Transfer 在两个账户间转移代币 (平衡双腿交易)
func (g *HederaGateway) Transfer(ctx context.Context, tokenID, from, to string, amount int64) (*domainledger.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewNetworkError("context cancelled", err)
	}

	tid, err := hedera.TokenIDFromString(tokenID)
	if err != nil {
		return nil, errors.NewValidationError("token_id", "type")
	}

	if from == "" {
		from = g.operatorID.String()
	}

	tx := hedera.NewTransferTransaction()
	for _, leg := range BuildTransferLegs(from, to, amount) {
		account, err := hedera.AccountIDFromString(leg.AccountID)
		if err != nil {
			return nil, errors.NewValidationError("account_id", "type")
		}
		tx.AddTokenTransfer(tid, account, leg.Amount)
	}

	resp, err := tx.Execute(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token transfer submission failed", err)
	}

	receipt, err := resp.GetReceipt(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token transfer receipt unavailable", err)
	}

	if err := checkReceiptStatus(receipt.Status.String(), "Token Transfer Transaction failed"); err != nil {
		return nil, err
	}

	return &domainledger.Receipt{
		Status:        receipt.Status.String(),
		TransactionID: resp.TransactionID.String(),
	}, nil
}

// HbarBalance 查询账户 HBAR 余额 (只读)
func (g *HederaGateway) HbarBalance(ctx context.Context, accountID string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.NewNetworkError("context cancelled", err)
	}

	account := g.operatorID
	if accountID != "" {
		parsed, err := hedera.AccountIDFromString(accountID)
		if err != nil {
			return 0, errors.NewValidationError("account_id", "type")
		}
		account = parsed
	}

	balance, err := hedera.NewAccountBalanceQuery().
		SetAccountID(account).
		Execute(g.client)
	if err != nil {
		return 0, errors.NewNetworkError("balance query failed", err)
	}

	return balance.Hbars.As(hedera.HbarUnits.Hbar), nil
}

// TokenInfo 查询代币元数据 (只读)
func (g *HederaGateway) TokenInfo(ctx context.Context, tokenID string) (*domainledger.TokenInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewNetworkError("context cancelled", err)
	}

	tid, err := hedera.TokenIDFromString(tokenID)
	if err != nil {
		return nil, errors.NewValidationError("token_id", "type")
	}

	info, err := hedera.NewTokenInfoQuery().
		SetTokenID(tid).
		Execute(g.client)
	if err != nil {
		return nil, errors.NewNetworkError("token info query failed", err)
	}

	return &domainledger.TokenInfo{
		TokenID:     tokenID,
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: info.TotalSupply,
	}, nil
}

// checkReceiptStatus maps a non-success consensus status to a terminal
// operation error. Never retried here.
func checkReceiptStatus(status, failureMessage string) error {
	if status != hedera.StatusSuccess.String() {
		return errors.NewOperationError(failureMessage)
	}
	return nil
}
