package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// Config 应用配置
type Config struct {
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Hedera   HederaConfig   `mapstructure:"hedera"`
	Registry RegistryConfig `mapstructure:"registry"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// GatewayConfig HTTP 网关配置
type GatewayConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // local, production
}

// HederaConfig 账本会话配置 — 每进程一个操作员身份
type HederaConfig struct {
	Network     string `mapstructure:"network"`      // mainnet, testnet, previewnet
	OperatorID  string `mapstructure:"operator_id"`  // 0.0.x
	OperatorKey string `mapstructure:"operator_key"` // DER/hex 私钥
	MirrorURL   string `mapstructure:"mirror_url"`   // mirror node REST base URL
}

// RegistryConfig 链上 tokenStorage 注册表配置 (EVM JSON-RPC)
type RegistryConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RPCURL          string `mapstructure:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address"`
	PrivateKey      string `mapstructure:"private_key"` // EVM 私钥 (hex)
}

// EngineConfig 外部推理引擎配置 (OpenAI 兼容接口)
type EngineConfig struct {
	BaseURL       string  `mapstructure:"base_url"`
	APIKey        string  `mapstructure:"api_key"`
	Model         string  `mapstructure:"model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// ChatConfig 会话线程配置
type ChatConfig struct {
	// WebThreadID is shared by every web user — observed behavior carried
	// over from the original deployment; per-user threads are an open item.
	WebThreadID     string `mapstructure:"web_thread_id"`
	HistoryLimit    int    `mapstructure:"history_limit"`
	TelegramThread  string `mapstructure:"telegram_thread"`
	PerChatTelegram bool   `mapstructure:"per_chat_telegram"` // thread per chat id instead of the shared one
}

// TelegramConfig Telegram 配置
type TelegramConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BotToken string  `mapstructure:"bot_token"`
	AllowIDs []int64 `mapstructure:"allow_ids"` // 为空则放行所有用户
	Debug    bool    `mapstructure:"debug"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // sqlite, postgres
	DSN  string `mapstructure:"dsn"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 加载配置: config.yaml + 环境变量, 缺省值兜底
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.hashtalk")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine — env vars + defaults may be enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 8080)
	v.SetDefault("gateway.mode", "local")

	v.SetDefault("hedera.network", "testnet")
	v.SetDefault("hedera.mirror_url", "https://testnet.mirrornode.hedera.com")

	v.SetDefault("registry.enabled", true)
	v.SetDefault("registry.rpc_url", "https://testnet.hashio.io/api")
	v.SetDefault("registry.contract_address", "0xa0b340ac3BfBcc741eAC47d4819E5deF63Fdf0A5")

	v.SetDefault("engine.base_url", "https://api.cerebras.ai/v1")
	v.SetDefault("engine.model", "llama-3.3-70b")
	v.SetDefault("engine.temperature", 0.7)
	v.SetDefault("engine.max_iterations", 8)

	v.SetDefault("chat.web_thread_id", "Hedera Web Chat")
	v.SetDefault("chat.telegram_thread", "Hedera Telegram Bot")
	v.SetDefault("chat.per_chat_telegram", true)
	v.SetDefault("chat.history_limit", 100)

	v.SetDefault("telegram.enabled", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "hashtalk.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// bindEnv keeps the original deployment's environment variable names working.
func bindEnv(v *viper.Viper) {
	v.BindEnv("hedera.operator_id", "HEDERA_ACCOUNT_ID")
	v.BindEnv("hedera.operator_key", "HEDERA_PRIVATE_KEY")
	v.BindEnv("hedera.network", "HEDERA_NETWORK")
	v.BindEnv("registry.private_key", "HEDERA_ETHERS_PRIVATE_KEY")
	v.BindEnv("engine.api_key", "CEREBRAS_API_KEY")
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")

	v.SetEnvPrefix("HASHTALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate fails fast on missing required settings, before any request
// is served. A missing operator identity is fatal at startup.
func (c *Config) Validate() error {
	if c.Hedera.OperatorID == "" {
		return errors.NewConfigurationError("hedera.operator_id (HEDERA_ACCOUNT_ID) is required")
	}
	if c.Hedera.OperatorKey == "" {
		return errors.NewConfigurationError("hedera.operator_key (HEDERA_PRIVATE_KEY) is required")
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.NewConfigurationError("telegram.bot_token (TELEGRAM_BOT_TOKEN) is required when telegram is enabled")
	}
	if c.Registry.Enabled && c.Registry.PrivateKey == "" {
		// Registry writes are best-effort; without a key we just disable them.
		c.Registry.Enabled = false
	}
	return nil
}
