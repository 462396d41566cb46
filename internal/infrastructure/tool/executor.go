package tool

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/service"
	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
)

// Executor 工具执行器 — 校验参数并执行单次工具调用。
// 所有失败 (未知工具/参数校验/账本错误) 都包进 Result 返回,
// 以便桥接器把失败作为工具输出回灌给推理引擎, 而不是中断对话。
type Executor struct {
	registry domaintool.Registry
	logger   *zap.Logger
}

// Compile-time interface check
var _ service.ToolExecutor = (*Executor)(nil)

// NewExecutor 创建工具执行器
func NewExecutor(registry domaintool.Registry, logger *zap.Logger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger,
	}
}

// Execute runs one invocation. Arguments are validated against the tool's
// schema before the tool — and therefore before any network call — is
// reached.
func (e *Executor) Execute(ctx context.Context, call service.ToolCallInfo) *domaintool.Result {
	t, ok := e.registry.Get(call.Name)
	if !ok {
		e.logger.Warn("Unknown tool requested", zap.String("tool", call.Name))
		return failed(fmt.Sprintf("unknown tool %q", call.Name))
	}

	validated, err := domaintool.ValidateArgs(t.Schema(), call.Arguments)
	if err != nil {
		e.logger.Warn("Tool arguments rejected",
			zap.String("tool", call.Name),
			zap.Error(err),
		)
		return failed(err.Error())
	}

	e.logger.Info("Executing tool",
		zap.String("tool", call.Name),
		zap.String("kind", string(t.Kind())),
	)

	result, err := t.Execute(ctx, validated)
	if err != nil {
		e.logger.Error("Tool execution failed",
			zap.String("tool", call.Name),
			zap.Error(err),
		)
		return failed(err.Error())
	}
	return result
}

func failed(message string) *domaintool.Result {
	return &domaintool.Result{
		Success: false,
		Error:   message,
	}
}
