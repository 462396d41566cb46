package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
	"github.com/hashtalk/hashtalk/gateway/pkg/safego"
)

// mirrorWriteTimeout bounds the background registry write after a token
// creation. The creation itself has already succeeded at that point.
const mirrorWriteTimeout = 60 * time.Second

// Deps 工具集依赖
// Registry 与 Tokens 允许为 nil (对应功能被禁用时)。
type Deps struct {
	Gateway  domainledger.Gateway
	Resolver domainledger.AccountResolver
	Registry domainledger.RegistryWriter
	Tokens   repository.TokenRepository
	Logger   *zap.Logger
}

// ---- create_fungible_token ----

// CreateFungibleTokenTool 创建同质化代币
type CreateFungibleTokenTool struct {
	deps Deps
}

func NewCreateFungibleTokenTool(deps Deps) *CreateFungibleTokenTool {
	return &CreateFungibleTokenTool{deps: deps}
}

func (t *CreateFungibleTokenTool) Name() string { return "create_fungible_token" }

func (t *CreateFungibleTokenTool) Description() string {
	return "Create exactly one new fungible token on Hedera. " +
		"The operator account becomes the treasury. " +
		"Set isSupplyKey to true if the token must be mintable later; " +
		"this cannot be added after creation. " +
		"maxSupply of 0 means an infinite supply. " +
		"Do not call this tool again if a transaction ID was already " +
		"returned for the current request."
}

func (t *CreateFungibleTokenTool) Kind() domaintool.Kind { return domaintool.KindMutate }

func (t *CreateFungibleTokenTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Token name, e.g. GreenEnergy",
			},
			"symbol": map[string]interface{}{
				"type":        "string",
				"description": "Token symbol, e.g. GREN",
			},
			"decimals": map[string]interface{}{
				"type":        "integer",
				"description": "Number of decimal places",
				"default":     0,
				"minimum":     0,
				"maximum":     18,
			},
			"initialSupply": map[string]interface{}{
				"type":        "integer",
				"description": "Initial supply minted to the treasury",
				"default":     0,
				"minimum":     0,
			},
			"maxSupply": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum supply; 0 for infinite",
				"default":     0,
				"minimum":     0,
			},
			"isSupplyKey": map[string]interface{}{
				"type":        "boolean",
				"description": "Allow minting after creation with the operator key",
				"default":     false,
			},
			"isAdminKey": map[string]interface{}{
				"type":        "boolean",
				"description": "Allow updating or deleting the token with the operator key",
				"default":     false,
			},
			"isMetadataKey": map[string]interface{}{
				"type":        "boolean",
				"description": "Allow updating token metadata with the operator key",
				"default":     false,
			},
			"metadata": map[string]interface{}{
				"type":        "string",
				"description": "Optional token metadata, e.g. an IPFS URI",
			},
			"memo": map[string]interface{}{
				"type":        "string",
				"description": "Optional token memo",
			},
		},
		"required": []string{"name", "symbol"},
	}
}

func (t *CreateFungibleTokenTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	opts := domainledger.CreateTokenOptions{
		Name:          strArg(args, "name"),
		Symbol:        strArg(args, "symbol"),
		Decimals:      uint32(intArg(args, "decimals")),
		InitialSupply: uint64(intArg(args, "initialSupply")),
		MaxSupply:     intArg(args, "maxSupply"),
		Memo:          strArg(args, "memo"),
		Metadata:      metadataArg(args),
		Authorities: domainledger.AuthorityConfig{
			SupplyKey:   boolArg(args, "isSupplyKey"),
			AdminKey:    boolArg(args, "isAdminKey"),
			MetadataKey: boolArg(args, "isMetadataKey"),
		},
	}

	creation, err := t.deps.Gateway.CreateFungibleToken(ctx, opts)
	if err != nil {
		return failed(err.Error()), nil
	}

	record := &entity.TokenRecord{
		TokenID:       creation.TokenID,
		Name:          opts.Name,
		Symbol:        opts.Symbol,
		Decimals:      opts.Decimals,
		InitialSupply: opts.InitialSupply,
		MaxSupply:     opts.MaxSupply,
		TransactionID: creation.TransactionID,
		CreatedAt:     time.Now(),
	}
	if t.deps.Tokens != nil {
		if err := t.deps.Tokens.Save(ctx, record); err != nil {
			t.deps.Logger.Warn("Failed to cache created token",
				zap.String("token_id", creation.TokenID),
				zap.Error(err),
			)
		}
	}

	// 注册表镜像写入: 后台执行, 失败只记日志 — 创建结果不受影响。
	t.recordInRegistry(record)

	return &domaintool.Result{
		Output: fmt.Sprintf("Token %s (%s) created successfully. Token ID: %s",
			opts.Name, opts.Symbol, creation.TokenID),
		Success: true,
		Metadata: map[string]interface{}{
			"token_id":       creation.TokenID,
			"transaction_id": creation.TransactionID,
			"status":         creation.Status,
		},
	}, nil
}

func (t *CreateFungibleTokenTool) recordInRegistry(record *entity.TokenRecord) {
	if t.deps.Registry == nil {
		return
	}

	tokenID := record.TokenID
	safego.Go(t.deps.Logger, "registry-record", func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()

		hash, err := t.deps.Registry.Record(ctx, tokenID)
		if err != nil {
			t.deps.Logger.Warn("Registry mirror write failed",
				zap.String("token_id", tokenID),
				zap.Error(err),
			)
			return
		}

		if t.deps.Tokens != nil {
			record.MirrorTxHash = hash
			if err := t.deps.Tokens.Save(ctx, record); err != nil {
				t.deps.Logger.Warn("Failed to store registry tx hash",
					zap.String("token_id", tokenID),
					zap.Error(err),
				)
			}
		}
	})
}

// ---- mint_token ----

// MintTokenTool 向金库铸造代币
type MintTokenTool struct {
	deps Deps
}

func NewMintTokenTool(deps Deps) *MintTokenTool {
	return &MintTokenTool{deps: deps}
}

func (t *MintTokenTool) Name() string { return "mint_token" }

func (t *MintTokenTool) Description() string {
	return "Mint additional units of an existing fungible token to its treasury. " +
		"Only works for tokens created with a supply key."
}

func (t *MintTokenTool) Kind() domaintool.Kind { return domaintool.KindMutate }

func (t *MintTokenTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tokenId": map[string]interface{}{
				"type":        "string",
				"description": "Token id, e.g. 0.0.5005",
			},
			"amount": map[string]interface{}{
				"type":        "integer",
				"description": "Units to mint, in the token's smallest denomination",
				"minimum":     1,
			},
		},
		"required": []string{"tokenId", "amount"},
	}
}

func (t *MintTokenTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	tokenID := strArg(args, "tokenId")
	amount := intArg(args, "amount")

	receipt, err := t.deps.Gateway.Mint(ctx, tokenID, uint64(amount))
	if err != nil {
		return failed(err.Error()), nil
	}

	return &domaintool.Result{
		Output:  fmt.Sprintf("Minted %d units of token %s. Status: %s", amount, tokenID, receipt.Status),
		Success: true,
		Metadata: map[string]interface{}{
			"token_id":       tokenID,
			"transaction_id": receipt.TransactionID,
			"status":         receipt.Status,
		},
	}, nil
}

// ---- transfer_token ----

// TransferTokenTool 转账代币
type TransferTokenTool struct {
	deps Deps
}

func NewTransferTokenTool(deps Deps) *TransferTokenTool {
	return &TransferTokenTool{deps: deps}
}

func (t *TransferTokenTool) Name() string { return "transfer_token" }

func (t *TransferTokenTool) Description() string {
	return "Transfer units of a fungible token between two accounts. " +
		"When fromAccountId is omitted the operator account is debited. " +
		"The receiving account must be associated with the token."
}

func (t *TransferTokenTool) Kind() domaintool.Kind { return domaintool.KindMutate }

func (t *TransferTokenTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tokenId": map[string]interface{}{
				"type":        "string",
				"description": "Token id, e.g. 0.0.5005",
			},
			"toAccountId": map[string]interface{}{
				"type":        "string",
				"description": "Receiving account id",
			},
			"fromAccountId": map[string]interface{}{
				"type":        "string",
				"description": "Sending account id; defaults to the operator",
				"default":     "",
			},
			"amount": map[string]interface{}{
				"type":        "integer",
				"description": "Units to transfer, in the token's smallest denomination",
				"minimum":     1,
			},
		},
		"required": []string{"tokenId", "toAccountId", "amount"},
	}
}

func (t *TransferTokenTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	tokenID := strArg(args, "tokenId")
	to := strArg(args, "toAccountId")
	from := strArg(args, "fromAccountId")
	amount := intArg(args, "amount")

	receipt, err := t.deps.Gateway.Transfer(ctx, tokenID, from, to, amount)
	if err != nil {
		return failed(err.Error()), nil
	}

	return &domaintool.Result{
		Output:  fmt.Sprintf("Transferred %d units of token %s to %s. Status: %s", amount, tokenID, to, receipt.Status),
		Success: true,
		Metadata: map[string]interface{}{
			"token_id":       tokenID,
			"transaction_id": receipt.TransactionID,
			"status":         receipt.Status,
		},
	}, nil
}

// ---- hbar_balance ----

// HbarBalanceTool 查询 HBAR 余额
type HbarBalanceTool struct {
	deps Deps
}

func NewHbarBalanceTool(deps Deps) *HbarBalanceTool {
	return &HbarBalanceTool{deps: deps}
}

func (t *HbarBalanceTool) Name() string { return "hbar_balance" }

func (t *HbarBalanceTool) Description() string {
	return "Query the HBAR balance of an account. " +
		"When accountId is omitted the operator account is queried."
}

func (t *HbarBalanceTool) Kind() domaintool.Kind { return domaintool.KindQuery }

func (t *HbarBalanceTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"accountId": map[string]interface{}{
				"type":        "string",
				"description": "Account id to query; defaults to the operator",
				"default":     "",
			},
		},
	}
}

func (t *HbarBalanceTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	accountID := strArg(args, "accountId")

	balance, err := t.deps.Gateway.HbarBalance(ctx, accountID)
	if err != nil {
		return failed(err.Error()), nil
	}

	display := accountID
	if display == "" {
		display = t.deps.Gateway.Operator()
	}

	return &domaintool.Result{
		Output:  fmt.Sprintf("Account %s holds %s HBAR", display, strconv.FormatFloat(balance, 'f', -1, 64)),
		Success: true,
		Metadata: map[string]interface{}{
			"account_id": display,
			"balance":    balance,
		},
	}, nil
}

// ---- token_info ----

// TokenInfoTool 查询代币元数据
type TokenInfoTool struct {
	deps Deps
}

func NewTokenInfoTool(deps Deps) *TokenInfoTool {
	return &TokenInfoTool{deps: deps}
}

func (t *TokenInfoTool) Name() string { return "token_info" }

func (t *TokenInfoTool) Description() string {
	return "Look up the name, symbol, decimals and total supply of a token by its id."
}

func (t *TokenInfoTool) Kind() domaintool.Kind { return domaintool.KindQuery }

func (t *TokenInfoTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tokenId": map[string]interface{}{
				"type":        "string",
				"description": "Token id, e.g. 0.0.5005",
			},
		},
		"required": []string{"tokenId"},
	}
}

func (t *TokenInfoTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	tokenID := strArg(args, "tokenId")

	info, err := t.deps.Gateway.TokenInfo(ctx, tokenID)
	if err != nil {
		return failed(err.Error()), nil
	}

	return &domaintool.Result{
		Output: fmt.Sprintf("Token %s: %s (%s), %d decimals, total supply %d",
			info.TokenID, info.Name, info.Symbol, info.Decimals, info.TotalSupply),
		Success: true,
		Metadata: map[string]interface{}{
			"token_id":     info.TokenID,
			"name":         info.Name,
			"symbol":       info.Symbol,
			"decimals":     info.Decimals,
			"total_supply": info.TotalSupply,
		},
	}, nil
}

// ---- resolve_account ----

// ResolveAccountTool 解析 EVM 地址对应的账户
type ResolveAccountTool struct {
	deps Deps
}

func NewResolveAccountTool(deps Deps) *ResolveAccountTool {
	return &ResolveAccountTool{deps: deps}
}

func (t *ResolveAccountTool) Name() string { return "resolve_account" }

func (t *ResolveAccountTool) Description() string {
	return "Resolve an EVM address (0x...) to its Hedera account id via the mirror node. " +
		"Reports when no account is mapped to the address."
}

func (t *ResolveAccountTool) Kind() domaintool.Kind { return domaintool.KindQuery }

func (t *ResolveAccountTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"evmAddress": map[string]interface{}{
				"type":        "string",
				"description": "EVM address, e.g. 0xabc...",
			},
		},
		"required": []string{"evmAddress"},
	}
}

func (t *ResolveAccountTool) Execute(ctx context.Context, args map[string]interface{}) (*domaintool.Result, error) {
	address := strArg(args, "evmAddress")

	account, err := t.deps.Resolver.ResolveAccount(ctx, address)
	if err != nil {
		return failed(err.Error()), nil
	}

	if account == "" {
		return &domaintool.Result{
			Output:  fmt.Sprintf("No Hedera account is mapped to address %s", address),
			Success: true,
		}, nil
	}

	return &domaintool.Result{
		Output:  fmt.Sprintf("Address %s maps to Hedera account %s", address, account),
		Success: true,
		Metadata: map[string]interface{}{
			"evm_address": strings.ToLower(address),
			"account_id":  account,
		},
	}, nil
}

// ---- argument helpers ----

// 校验器保证了类型, 这里只做安全提取; 缺省键返回零值。

func strArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]interface{}, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// metadataArg 元数据参数: 空字符串视为未提供
func metadataArg(args map[string]interface{}) []byte {
	v := strArg(args, "metadata")
	if v == "" {
		return nil
	}
	return []byte(v)
}

func intArg(args map[string]interface{}, key string) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}
