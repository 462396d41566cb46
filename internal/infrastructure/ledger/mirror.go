package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// MirrorClient is a read-only client for the mirror/indexing REST API.
// It reflects ledger state without consensus participation.
type MirrorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Compile-time interface check
var _ domainledger.AccountResolver = (*MirrorClient)(nil)

// NewMirrorClient 创建 mirror node 客户端
func NewMirrorClient(baseURL string, logger *zap.Logger) *MirrorClient {
	return &MirrorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// accountResponse mirror node /accounts/{id} 响应 (仅取所需字段)
type accountResponse struct {
	Account string `json:"account"`
}

// ResolveAccount maps a foreign-chain (EVM) address to a ledger-native
// account id. An unmapped address yields "" and a nil error — any
// non-200 mirror response means "no account", not a failure.
func (m *MirrorClient) ResolveAccount(ctx context.Context, evmAddress string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/accounts/%s", m.baseURL, evmAddress)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", errors.NewNetworkError("create mirror request", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", errors.NewNetworkError("mirror node unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.logger.Debug("No mirrored account for address",
			zap.String("address", evmAddress),
			zap.Int("status", resp.StatusCode),
		)
		return "", nil
	}

	var account accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return "", errors.NewNetworkError("decode mirror response", err)
	}

	return account.Account, nil
}
