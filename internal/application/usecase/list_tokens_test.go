package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/persistence"
)

type staticRegistry struct {
	ids []string
	err error
}

func (r *staticRegistry) Record(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (r *staticRegistry) List(_ context.Context) ([]string, error) {
	return r.ids, r.err
}

func TestListTokens_RegistryEnrichedFromCache(t *testing.T) {
	repo := persistence.NewMemoryTokenRepository()
	repo.Save(context.Background(), &entity.TokenRecord{
		TokenID:   "0.0.5005",
		Name:      "GreenEnergy",
		Symbol:    "GREN",
		CreatedAt: time.Now(),
	})

	registry := &staticRegistry{ids: []string{"0.0.5005", "0.0.7007"}}
	uc := NewListTokensUseCase(registry, repo, zap.NewNop())

	listings, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected both registry ids, got %d", len(listings))
	}
	if listings[0].Name != "GreenEnergy" || listings[0].Symbol != "GREN" {
		t.Fatalf("cached metadata missing: %+v", listings[0])
	}
	// 注册表有、缓存没有的代币仍要列出
	if listings[1].TokenID != "0.0.7007" || listings[1].Name != "" {
		t.Fatalf("uncached token must still list: %+v", listings[1])
	}
}

func TestListTokens_RegistryFailureFallsBackToCache(t *testing.T) {
	repo := persistence.NewMemoryTokenRepository()
	repo.Save(context.Background(), &entity.TokenRecord{
		TokenID:   "0.0.5005",
		Name:      "GreenEnergy",
		Symbol:    "GREN",
		CreatedAt: time.Now(),
	})

	registry := &staticRegistry{err: errors.New("relay unreachable")}
	uc := NewListTokensUseCase(registry, repo, zap.NewNop())

	listings, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if len(listings) != 1 || listings[0].TokenID != "0.0.5005" {
		t.Fatalf("cache fallback broken: %+v", listings)
	}
}

func TestListTokens_NoRegistryServesCache(t *testing.T) {
	repo := persistence.NewMemoryTokenRepository()
	repo.Save(context.Background(), &entity.TokenRecord{
		TokenID:   "0.0.5005",
		CreatedAt: time.Now(),
	})

	uc := NewListTokensUseCase(nil, repo, zap.NewNop())

	listings, err := uc.Execute(context.Background())
	if err != nil || len(listings) != 1 {
		t.Fatalf("expected cached listing, got %v (%v)", listings, err)
	}
}
