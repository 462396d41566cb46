package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	apperrors "github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

func TestMemoryMessageRepository_AppendOnlyOrder(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		msg, err := entity.NewMessage(fmt.Sprintf("msg-%d", i), "Hedera Web Chat", entity.RoleUser, fmt.Sprintf("hello %d", i))
		if err != nil {
			t.Fatalf("new message: %v", err)
		}
		if err := repo.Save(ctx, msg); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	messages, err := repo.FindByThreadID(ctx, "Hedera Web Chat", 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, msg := range messages {
		if msg.Content() != fmt.Sprintf("hello %d", i) {
			t.Fatalf("order broken at %d: %q", i, msg.Content())
		}
	}

	count, err := repo.Count(ctx, "Hedera Web Chat")
	if err != nil || count != 3 {
		t.Fatalf("expected count 3, got %d (%v)", count, err)
	}
}

func TestMemoryMessageRepository_LimitKeepsNewest(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg, _ := entity.NewMessage(fmt.Sprintf("msg-%d", i), "t1", entity.RoleUser, fmt.Sprintf("m%d", i))
		repo.Save(ctx, msg)
	}

	messages, err := repo.FindByThreadID(ctx, "t1", 2)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content() != "m3" || messages[1].Content() != "m4" {
		t.Fatalf("limit must keep the newest messages: %q %q", messages[0].Content(), messages[1].Content())
	}
}

func TestMemoryMessageRepository_ClearStartsFreshThread(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	msg, _ := entity.NewMessage("msg-1", "t1", entity.RoleUser, "hi")
	repo.Save(ctx, msg)

	if err := repo.Clear(ctx, "t1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	count, _ := repo.Count(ctx, "t1")
	if count != 0 {
		t.Fatalf("expected empty thread after clear, got %d", count)
	}
}

func TestMemoryTokenRepository_UpsertByTokenID(t *testing.T) {
	repo := NewMemoryTokenRepository()
	ctx := context.Background()

	record := &entity.TokenRecord{
		TokenID:   "0.0.5005",
		Name:      "GreenEnergy",
		Symbol:    "GREN",
		CreatedAt: time.Now(),
	}
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}

	// 回填镜像哈希
	record.MirrorTxHash = "0xfeedbeef"
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	found, err := repo.FindByTokenID(ctx, "0.0.5005")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.MirrorTxHash != "0xfeedbeef" {
		t.Fatalf("upsert must update the mirror hash, got %q", found.MirrorTxHash)
	}

	records, err := repo.List(ctx, 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("upsert must not duplicate records: %d (%v)", len(records), err)
	}
}

func TestMemoryTokenRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryTokenRepository()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		repo.Save(ctx, &entity.TokenRecord{
			TokenID:   fmt.Sprintf("0.0.%d", 5000+i),
			Name:      fmt.Sprintf("Token%d", i),
			Symbol:    "TOK",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	records, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].TokenID != "0.0.5002" {
		t.Fatalf("expected newest first, got %s", records[0].TokenID)
	}
}

func TestMemoryTokenRepository_NotFound(t *testing.T) {
	repo := NewMemoryTokenRepository()

	_, err := repo.FindByTokenID(context.Background(), "0.0.9999")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
