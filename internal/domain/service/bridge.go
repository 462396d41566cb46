package service

import (
	"context"
	"strings"

	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
	"go.uber.org/zap"
)

// ChatMessage is one entry of a conversation thread as seen by the
// reasoning engine. Threads are append-only; the bridge never fabricates
// or reorders entries.
type ChatMessage struct {
	Role       string `json:"role"` // "system", "user", "assistant", "tool"
	Content    string `json:"content"`
	ToolCalls  []ToolCallInfo
	ToolCallID string
	ToolName   string
}

// ToolCallInfo is a single operation invocation requested by the engine.
// Consumed once; never persisted beyond the thread history.
type ToolCallInfo struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// EventKind tags the variant decoded at the reasoning-engine boundary.
type EventKind string

const (
	// EventAssistantMessage carries natural-language assistant output.
	EventAssistantMessage EventKind = "assistant_message"
	// EventToolCalls carries one or more requested operation invocations.
	EventToolCalls EventKind = "tool_calls"
)

// Event is the tagged variant over the engine's reply. Exactly one of
// Text / ToolCalls is meaningful depending on Kind.
type Event struct {
	Kind      EventKind
	Text      string
	ToolCalls []ToolCallInfo
}

// EngineRequest is one completion request to the external reasoning engine.
type EngineRequest struct {
	Messages []ChatMessage
	Tools    []domaintool.Definition
}

// Engine is the external reasoning engine boundary. It owns intent
// parsing and tool selection; the bridge only routes invocations and
// results. Implementations live in infrastructure.
type Engine interface {
	// Complete runs one reasoning turn and returns its decoded events.
	Complete(ctx context.Context, req *EngineRequest) ([]Event, error)
}

// ToolExecutor validates and runs a single operation invocation.
// Execution failures (including validation) come back inside the Result
// so they can be fed to the engine as tool output, not thrown.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCallInfo) *domaintool.Result
}

// BridgeConfig 桥接配置
type BridgeConfig struct {
	SystemPrompt  string
	MaxIterations int // 单条用户消息允许的最大推理轮数
}

// DefaultSystemPrompt mirrors the assistant behavior the front-ends expect.
const DefaultSystemPrompt = `You are a helpful AI assistant that can interact with the Hedera blockchain.
You can perform on-chain actions using the available tools.
Keep your responses concise and helpful.
If you need funds, you can request them from a faucet or from the user.
If there is a 5XX error, ask the user to try again later.
If asked to do something beyond your tools' capabilities, explain that limitation.
If the user asks to create a token, create only one.`

// DefaultBridgeConfig returns production defaults.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		SystemPrompt:  DefaultSystemPrompt,
		MaxIterations: 8,
	}
}

// Bridge 工具调用桥 — 自由文本与强类型账本操作之间的唯一边界。
// 推理保持在外部引擎; 桥只负责: 提交工具定义 → 解码事件 → 校验并执行
// 工具调用 → 回灌结果 → 聚合最终回复。
type Bridge struct {
	engine   Engine
	registry domaintool.Registry
	executor ToolExecutor
	config   BridgeConfig
	logger   *zap.Logger
}

// NewBridge 创建桥接器
func NewBridge(engine Engine, registry domaintool.Registry, executor ToolExecutor, config BridgeConfig, logger *zap.Logger) *Bridge {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultBridgeConfig().MaxIterations
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	return &Bridge{
		engine:   engine,
		registry: registry,
		executor: executor,
		config:   config,
		logger:   logger,
	}
}

// Run processes one user turn against the given thread history.
// It returns the accumulated reply (assistant text and tool outputs, in
// order) and every message appended during the turn, so the caller can
// persist them. Tool calls are executed strictly sequentially: a second
// invocation is never issued before the first resolves.
func (b *Bridge) Run(ctx context.Context, history []ChatMessage, userText string) (string, []ChatMessage, error) {
	userMsg := ChatMessage{Role: "user", Content: userText}
	messages := append(append([]ChatMessage{}, history...), userMsg)
	appended := []ChatMessage{userMsg}

	var transcript []string

	for i := 0; i < b.config.MaxIterations; i++ {
		events, err := b.engine.Complete(ctx, &EngineRequest{
			Messages: b.withSystemPrompt(messages),
			Tools:    b.registry.List(),
		})
		if err != nil {
			return "", nil, err
		}

		var text string
		var calls []ToolCallInfo
		for _, ev := range events {
			switch ev.Kind {
			case EventAssistantMessage:
				text = ev.Text
			case EventToolCalls:
				calls = append(calls, ev.ToolCalls...)
			}
		}

		if text != "" {
			transcript = append(transcript, text)
		}

		assistantMsg := ChatMessage{Role: "assistant", Content: text, ToolCalls: calls}
		messages = append(messages, assistantMsg)
		appended = append(appended, assistantMsg)

		if len(calls) == 0 {
			break
		}

		for _, call := range calls {
			result := b.executor.Execute(ctx, call)

			output := result.Output
			if !result.Success && result.Error != "" {
				output = result.Error
			}

			b.logger.Info("Tool round completed",
				zap.String("tool", call.Name),
				zap.Bool("success", result.Success),
			)

			transcript = append(transcript, output)

			toolMsg := ChatMessage{
				Role:       "tool",
				Content:    output,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			}
			messages = append(messages, toolMsg)
			appended = append(appended, toolMsg)
		}
	}

	return strings.TrimSpace(strings.Join(transcript, "\n")), appended, nil
}

// withSystemPrompt prepends the system prompt without persisting it.
func (b *Bridge) withSystemPrompt(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages)+1)
	out = append(out, ChatMessage{Role: "system", Content: b.config.SystemPrompt})
	return append(out, messages...)
}
