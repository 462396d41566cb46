package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/entity"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/service"
	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/persistence"
)

// scriptedEngine 按脚本回放事件的假引擎
type scriptedEngine struct {
	script   [][]service.Event
	requests []*service.EngineRequest
}

func (e *scriptedEngine) Complete(_ context.Context, req *service.EngineRequest) ([]service.Event, error) {
	copied := *req
	e.requests = append(e.requests, &copied)

	if len(e.script) == 0 {
		return []service.Event{{Kind: service.EventAssistantMessage, Text: "done"}}, nil
	}
	next := e.script[0]
	e.script = e.script[1:]
	return next, nil
}

type noopExecutor struct{}

func (noopExecutor) Execute(_ context.Context, _ service.ToolCallInfo) *domaintool.Result {
	return &domaintool.Result{Output: "ok", Success: true}
}

func newTestUseCase(engine *scriptedEngine) (*ProcessMessageUseCase, *persistence.MemoryMessageRepository) {
	repo := persistence.NewMemoryMessageRepository().(*persistence.MemoryMessageRepository)
	bridge := service.NewBridge(engine, domaintool.NewInMemoryRegistry(), noopExecutor{}, service.DefaultBridgeConfig(), zap.NewNop())
	uc := NewProcessMessageUseCase(repo, bridge, 50, zap.NewNop())
	return uc, repo
}

func TestProcessMessage_PersistsTurnInOrder(t *testing.T) {
	engine := &scriptedEngine{script: [][]service.Event{
		{{Kind: service.EventAssistantMessage, Text: "Hello! How can I help?"}},
	}}
	uc, repo := newTestUseCase(engine)
	ctx := context.Background()

	reply, err := uc.Execute(ctx, "Hedera Web Chat", "hi")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if reply != "Hello! How can I help?" {
		t.Fatalf("unexpected reply %q", reply)
	}

	messages, _ := repo.FindByThreadID(ctx, "Hedera Web Chat", 0)
	if len(messages) != 2 {
		t.Fatalf("expected user + assistant persisted, got %d", len(messages))
	}
	if messages[0].Role() != entity.RoleUser || messages[0].Content() != "hi" {
		t.Fatalf("unexpected first message: %s %q", messages[0].Role(), messages[0].Content())
	}
	if messages[1].Role() != entity.RoleAssistant {
		t.Fatalf("unexpected second message role %s", messages[1].Role())
	}
}

func TestProcessMessage_HistoryReplayedToEngine(t *testing.T) {
	engine := &scriptedEngine{}
	uc, repo := newTestUseCase(engine)
	ctx := context.Background()

	earlier, _ := entity.NewMessage("m1", "t1", entity.RoleUser, "what is my balance?")
	repo.Save(ctx, earlier)

	if _, err := uc.Execute(ctx, "t1", "and now?"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(engine.requests) != 1 {
		t.Fatalf("expected one engine call, got %d", len(engine.requests))
	}
	msgs := engine.requests[0].Messages
	// system prompt + stored history + new user turn
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages in engine request, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("system prompt must lead the request, got %q", msgs[0].Role)
	}
	if msgs[1].Content != "what is my balance?" {
		t.Fatalf("history not replayed: %q", msgs[1].Content)
	}
}

func TestProcessMessage_ToolOutputsPersistedAsToolMessages(t *testing.T) {
	engine := &scriptedEngine{script: [][]service.Event{
		{{Kind: service.EventToolCalls, ToolCalls: []service.ToolCallInfo{
			{ID: "call-1", Name: "hbar_balance", Arguments: map[string]interface{}{}},
		}}},
		{{Kind: service.EventAssistantMessage, Text: "Your balance is 42.5 HBAR."}},
	}}
	uc, repo := newTestUseCase(engine)
	ctx := context.Background()

	if _, err := uc.Execute(ctx, "t1", "balance?"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	messages, _ := repo.FindByThreadID(ctx, "t1", 0)
	// user, tool output, final assistant — empty assistant tool-call turn skipped
	if len(messages) != 3 {
		t.Fatalf("expected 3 persisted messages, got %d", len(messages))
	}
	if messages[1].Role() != entity.RoleTool || messages[1].ToolName() != "hbar_balance" {
		t.Fatalf("tool message not persisted correctly: %s %q", messages[1].Role(), messages[1].ToolName())
	}
	if messages[1].ToolCallID() != "call-1" {
		t.Fatalf("tool call id lost: %q", messages[1].ToolCallID())
	}
}

func TestProcessMessage_ResetClearsThread(t *testing.T) {
	engine := &scriptedEngine{}
	uc, repo := newTestUseCase(engine)
	ctx := context.Background()

	uc.Execute(ctx, "t1", "hi")
	if err := uc.Reset(ctx, "t1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	count, _ := repo.Count(ctx, "t1")
	if count != 0 {
		t.Fatalf("expected empty thread, got %d messages", count)
	}
}
