package ledger

import (
	"context"
	"fmt"
)

// Network 目标网络
type Network string

const (
	NetworkMainnet    Network = "mainnet"
	NetworkTestnet    Network = "testnet"
	NetworkPreviewnet Network = "previewnet"
)

// NetworkFromString parses a network name, defaulting to testnet for "".
func NetworkFromString(s string) (Network, error) {
	switch s {
	case "":
		return NetworkTestnet, nil
	case string(NetworkMainnet), string(NetworkTestnet), string(NetworkPreviewnet):
		return Network(s), nil
	}
	return "", fmt.Errorf("unknown network %q (want mainnet, testnet or previewnet)", s)
}

// AuthorityConfig names which token roles the operator key fills.
// The gateway only ever binds its own operator key — externally supplied
// keys are not accepted for any role.
type AuthorityConfig struct {
	SupplyKey   bool // operator key may mint/burn after creation
	AdminKey    bool // operator key may update/delete the token
	MetadataKey bool // operator key may update token metadata
}

// CreateTokenOptions 创建同质化代币的参数
type CreateTokenOptions struct {
	Name          string
	Symbol        string
	Decimals      uint32
	InitialSupply uint64
	// MaxSupply > 0 creates a finite-supply token; 0 means infinite.
	MaxSupply   int64
	Authorities AuthorityConfig
	Metadata    []byte
	Memo        string
}

// TokenCreation 代币创建结果
type TokenCreation struct {
	TokenID       string
	Status        string
	TransactionID string
}

// Receipt 链上交易回执摘要
type Receipt struct {
	Status        string
	TransactionID string
}

// TokenInfo 代币元数据 (只读查询)
type TokenInfo struct {
	TokenID     string
	Name        string
	Symbol      string
	Decimals    uint32
	TotalSupply uint64
}

// PaymentProof is the caller-supplied evidence of a foreign-chain payment
// on the purchase path. It is a mandatory argument so that verification has
// an explicit place to live; the current implementation records it without
// verifying it against the foreign chain.
type PaymentProof struct {
	TxHash string // foreign-chain payment transaction hash
	Payer  string // EVM address that paid
}

// Valid reports whether the proof carries the minimum required fields.
func (p PaymentProof) Valid() bool {
	return p.TxHash != "" && p.Payer != ""
}

// Gateway is the sole port through which ledger network I/O happens.
// One authenticated operator session per process; every mutating call
// blocks until network consensus (seconds, not local latency) and is
// never retried automatically.
type Gateway interface {
	// CreateFungibleToken creates exactly one token per call.
	CreateFungibleToken(ctx context.Context, opts CreateTokenOptions) (*TokenCreation, error)

	// Mint mints amount units to the token's treasury.
	Mint(ctx context.Context, tokenID string, amount uint64) (*Receipt, error)

	// Transfer moves amount units from one account to another as a balanced
	// two-leg transfer. An empty from account defaults to the operator.
	Transfer(ctx context.Context, tokenID, from, to string, amount int64) (*Receipt, error)

	// HbarBalance returns the HBAR balance of an account. An empty account
	// defaults to the operator.
	HbarBalance(ctx context.Context, accountID string) (float64, error)

	// TokenInfo looks up token metadata by id.
	TokenInfo(ctx context.Context, tokenID string) (*TokenInfo, error)

	// Operator returns the operator account id of the process session.
	Operator() string
}

// AccountResolver maps a foreign-chain (EVM) address to a ledger-native
// account id via the mirror node.
type AccountResolver interface {
	// ResolveAccount returns "" — not an error — when no account is mapped.
	ResolveAccount(ctx context.Context, evmAddress string) (string, error)
}

// RegistryWriter appends created token ids to the external on-chain
// registry contract. Writes are best-effort: a failure here must never
// invalidate the token creation that triggered it.
type RegistryWriter interface {
	// Record appends a token id and returns the registry transaction hash.
	Record(ctx context.Context, tokenID string) (string, error)

	// List reads back every recorded token id.
	List(ctx context.Context) ([]string, error)
}
