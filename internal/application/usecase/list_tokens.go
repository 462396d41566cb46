package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
)

// TokenListing 代币列表项
// 链上注册表是代币发现的事实来源; 本地缓存补充名称等元数据。
type TokenListing struct {
	TokenID       string `json:"tokenId"`
	Name          string `json:"name,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	MirrorTxHash  string `json:"mirrorTxHash,omitempty"`
}

// ListTokensUseCase 列出已创建的代币
type ListTokensUseCase struct {
	registry  domainledger.RegistryWriter
	tokenRepo repository.TokenRepository
	logger    *zap.Logger
}

// NewListTokensUseCase 创建代币列表用例
func NewListTokensUseCase(
	registry domainledger.RegistryWriter,
	tokenRepo repository.TokenRepository,
	logger *zap.Logger,
) *ListTokensUseCase {
	return &ListTokensUseCase{
		registry:  registry,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// Execute reads token ids from the on-chain registry and enriches them
// from the local cache. When the registry is disabled or unreachable the
// local cache alone serves the list.
func (uc *ListTokensUseCase) Execute(ctx context.Context) ([]TokenListing, error) {
	cached := uc.cachedRecords(ctx)

	if uc.registry == nil {
		return fromCache(cached), nil
	}

	ids, err := uc.registry.List(ctx)
	if err != nil {
		uc.logger.Warn("Registry list failed, serving local cache", zap.Error(err))
		return fromCache(cached), nil
	}

	listings := make([]TokenListing, 0, len(ids))
	for _, id := range ids {
		listing := TokenListing{TokenID: id}
		if record, ok := cached[id]; ok {
			listing.Name = record.Name
			listing.Symbol = record.Symbol
			listing.TransactionID = record.TransactionID
			listing.MirrorTxHash = record.MirrorTxHash
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (uc *ListTokensUseCase) cachedRecords(ctx context.Context) map[string]*entity.TokenRecord {
	cached := make(map[string]*entity.TokenRecord)
	if uc.tokenRepo == nil {
		return cached
	}

	records, err := uc.tokenRepo.List(ctx, 0)
	if err != nil {
		uc.logger.Warn("Token cache unavailable", zap.Error(err))
		return cached
	}
	for _, record := range records {
		cached[record.TokenID] = record
	}
	return cached
}

func fromCache(cached map[string]*entity.TokenRecord) []TokenListing {
	listings := make([]TokenListing, 0, len(cached))
	for _, record := range cached {
		listings = append(listings, TokenListing{
			TokenID:       record.TokenID,
			Name:          record.Name,
			Symbol:        record.Symbol,
			TransactionID: record.TransactionID,
			MirrorTxHash:  record.MirrorTxHash,
		})
	}
	return listings
}
