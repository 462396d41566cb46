package tokenregistry

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// tokenStorage 合约 ABI — 追加/读取代币ID字符串
const registryABI = `[
  {"inputs":[{"internalType":"string","name":"_tokenId","type":"string"}],"name":"addTokenId","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[],"name":"getTokenIds","outputs":[{"internalType":"string[]","name":"","type":"string[]"}],"stateMutability":"view","type":"function"}
]`

// fallbackGasLimit is used when gas estimation fails against the
// Hedera EVM relay.
const fallbackGasLimit = 400_000

// ContractClient writes created token ids into the external tokenStorage
// contract over the EVM JSON-RPC relay and reads them back for listing.
// The registry entry list is externally owned and append-only.
type ContractClient struct {
	client   *ethclient.Client
	contract common.Address
	parsed   abi.ABI
	key      *ecdsa.PrivateKey
	from     common.Address
	logger   *zap.Logger
}

// Compile-time interface check
var _ domainledger.RegistryWriter = (*ContractClient)(nil)

// Config 注册表合约配置
type Config struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string // hex, 0x 前缀可选
}

// NewContractClient 创建注册表合约客户端
func NewContractClient(cfg Config, logger *zap.Logger) (*ContractClient, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial registry rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("invalid registry private key: %v", err))
	}

	return &ContractClient{
		client:   client,
		contract: common.HexToAddress(cfg.ContractAddress),
		parsed:   parsed,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		logger:   logger,
	}, nil
}

// Record appends a token id to the registry and returns the transaction
// hash. Best-effort at-most-once: no retry, and callers must never let a
// failure here affect the token creation that triggered it.
func (c *ContractClient) Record(ctx context.Context, tokenID string) (string, error) {
	data, err := c.parsed.Pack("addTokenId", tokenID)
	if err != nil {
		return "", errors.NewMirrorWriteError("pack addTokenId", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", errors.NewMirrorWriteError("fetch nonce", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", errors.NewMirrorWriteError("suggest gas price", err)
	}

	gasLimit, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &c.contract,
		Data: data,
	})
	if err != nil {
		gasLimit = fallbackGasLimit
	}

	chainID, err := c.client.ChainID(ctx)
	if err != nil {
		return "", errors.NewMirrorWriteError("fetch chain id", err)
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return "", errors.NewMirrorWriteError("sign registry transaction", err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return "", errors.NewMirrorWriteError("send registry transaction", err)
	}

	hash := signed.Hash().Hex()
	c.logger.Info("Token id recorded in registry",
		zap.String("token_id", tokenID),
		zap.String("tx_hash", hash),
	)
	return hash, nil
}

// List reads back every token id recorded in the contract.
func (c *ContractClient) List(ctx context.Context) ([]string, error) {
	data, err := c.parsed.Pack("getTokenIds")
	if err != nil {
		return nil, fmt.Errorf("pack getTokenIds: %w", err)
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.NewNetworkError("registry read failed", err)
	}

	var ids []string
	if err := c.parsed.UnpackIntoInterface(&ids, "getTokenIds", out); err != nil {
		return nil, fmt.Errorf("unpack getTokenIds: %w", err)
	}
	return ids, nil
}
