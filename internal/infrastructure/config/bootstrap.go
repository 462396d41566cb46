package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// AppName is the canonical application name
const AppName = "hashtalk"

// HomeDir returns the user's HashTalk configuration home: ~/.hashtalk
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+AppName)
}

// Bootstrap ensures the ~/.hashtalk directory exists with a default config.
// Called once at startup. Safe to call multiple times — only creates missing items.
func Bootstrap(logger *zap.Logger) error {
	return bootstrapInto(HomeDir(), logger)
}

func bootstrapInto(root string, logger *zap.Logger) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", root, err)
	}

	// Only written if it doesn't already exist — never overwrite user edits.
	path := filepath.Join(root, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		logger.Debug("HashTalk home directory OK", zap.String("home", root))
		return nil
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	logger.Info("HashTalk bootstrap complete",
		zap.String("home", root),
		zap.String("config", path),
	)
	return nil
}

// ──────────────────────────────────────────────────────────────
// Embedded default config
// ──────────────────────────────────────────────────────────────

const defaultConfig = `# ═══════════════════════════════════════════════════════════════
# HashTalk Configuration / HashTalk 配置文件
# Auto-generated on first launch — feel free to edit
# 首次启动自动生成 — 可自由编辑
# ═══════════════════════════════════════════════════════════════

# ─── Gateway Server / 网关服务 ────────────────────────────────
# HTTP + WebSocket server settings.
# HTTP + WebSocket 服务监听地址。
gateway:
  host: 0.0.0.0
  port: 8080
  mode: local                  # local | production

# ─── Hedera Session / Hedera 会话 ─────────────────────────────
# Operator identity. Required — also settable via
# HEDERA_ACCOUNT_ID / HEDERA_PRIVATE_KEY environment variables.
# 操作员身份。必填 — 也可通过环境变量设置。
hedera:
  network: testnet             # mainnet | testnet | previewnet
  operator_id: ""              # 0.0.x
  operator_key: ""             # DER/hex private key / DER 或 hex 私钥
  mirror_url: "https://testnet.mirrornode.hedera.com"

# ─── Token Registry / 代币注册表 ──────────────────────────────
# On-chain tokenStorage contract over the Hedera EVM JSON-RPC relay.
# Writes are best-effort; leave private_key empty to disable them.
# 基于 EVM JSON-RPC 的链上注册表。写入为 best-effort; private_key
# 为空则自动关闭。
registry:
  enabled: true
  rpc_url: "https://testnet.hashio.io/api"
  contract_address: "0xa0b340ac3BfBcc741eAC47d4819E5deF63Fdf0A5"
  private_key: ""              # EVM private key (hex) / EVM 私钥

# ─── Reasoning Engine / 推理引擎 ──────────────────────────────
# Any OpenAI-compatible chat completions endpoint.
# 任意 OpenAI 兼容的 chat completions 接口。
engine:
  base_url: "https://api.cerebras.ai/v1"
  api_key: ""                  # Or CEREBRAS_API_KEY / 或环境变量
  model: "llama-3.3-70b"
  temperature: 0.7
  max_iterations: 8            # Max tool-call rounds / 最大工具调用轮数

# ─── Chat Threads / 会话线程 ──────────────────────────────────
chat:
  web_thread_id: "Hedera Web Chat"   # Shared by all web users / 所有 Web 用户共享
  telegram_thread: "Hedera Telegram Bot"
  per_chat_telegram: true      # Thread per Telegram chat / 每个会话独立线程
  history_limit: 100           # Messages replayed per turn / 每轮回放的历史条数

# ─── Telegram Bot / Telegram 机器人 ──────────────────────────
telegram:
  enabled: false
  bot_token: ""                # Get from @BotFather / 从 @BotFather 获取
  allow_ids: []                # Allowed user IDs; empty = everyone / 为空则放行所有用户
  debug: false

# ─── Database / 数据库 ───────────────────────────────────────
# Conversation history and created-token cache.
# 会话历史与已创建代币缓存。
database:
  type: sqlite                 # sqlite | postgres
  dsn: hashtalk.db             # File path (sqlite) or connection string (postgres)

# ─── Logging / 日志 ──────────────────────────────────────────
log:
  level: info                  # debug | info | warn | error
  format: json                 # console | json
`
