package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
	domainledger "github.com/hashtalk/hashtalk/gateway/internal/domain/ledger"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/repository"
	"github.com/hashtalk/hashtalk/gateway/internal/domain/service"
	domaintool "github.com/hashtalk/hashtalk/gateway/internal/domain/tool"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/config"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/engine"
	infraledger "github.com/hashtalk/hashtalk/gateway/internal/infrastructure/ledger"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/persistence"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/tokenregistry"
	toolpkg "github.com/hashtalk/hashtalk/gateway/internal/infrastructure/tool"
	httpServer "github.com/hashtalk/hashtalk/gateway/internal/interfaces/http"
	"github.com/hashtalk/hashtalk/gateway/internal/interfaces/telegram"
	"github.com/hashtalk/hashtalk/gateway/internal/interfaces/websocket"
)

// App 应用程序 (依赖注入容器)
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB

	// 仓储层
	messageRepo repository.MessageRepository
	tokenRepo   repository.TokenRepository

	// 账本基础设施
	gateway  domainledger.Gateway
	resolver domainledger.AccountResolver
	registry domainledger.RegistryWriter

	// 工具桥
	toolRegistry domaintool.Registry
	toolExecutor *toolpkg.Executor
	engineClient *engine.Client
	bridge       *service.Bridge

	// 应用服务
	processMessageUseCase  *usecase.ProcessMessageUseCase
	processPurchaseUseCase *usecase.ProcessPurchaseUseCase
	listTokensUseCase      *usecase.ListTokensUseCase

	// 接口层
	wsHub           *websocket.Hub
	httpServer      *httpServer.Server
	telegramAdapter *telegram.Adapter

	cancelHub context.CancelFunc
}

// NewApp 创建应用程序
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := app.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := app.initLedger(); err != nil {
		return nil, fmt.Errorf("failed to init ledger infrastructure: %w", err)
	}

	if err := app.initBridge(); err != nil {
		return nil, fmt.Errorf("failed to init tool bridge: %w", err)
	}

	app.initApplicationServices()

	if err := app.initInterfaces(); err != nil {
		return nil, fmt.Errorf("failed to init interfaces: %w", err)
	}

	return app, nil
}

// NewAppREPL creates a lightweight app for the interactive REPL.
// Skips the HTTP server, WebSocket hub and Telegram adapter.
func NewAppREPL(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := app.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := app.initLedger(); err != nil {
		return nil, fmt.Errorf("failed to init ledger infrastructure: %w", err)
	}

	if err := app.initBridge(); err != nil {
		return nil, fmt.Errorf("failed to init tool bridge: %w", err)
	}

	app.initApplicationServices()

	return app, nil
}

// initRepositories 初始化仓储层
func (app *App) initRepositories() error {
	db, err := persistence.NewDBConnection(&app.config.Database)
	if err != nil {
		return err
	}

	app.db = db
	app.messageRepo = persistence.NewGormMessageRepository(db)
	app.tokenRepo = persistence.NewGormTokenRepository(db)
	return nil
}

// initLedger 初始化账本网关/镜像节点/注册表合约
func (app *App) initLedger() error {
	gateway, err := infraledger.NewHederaGateway(infraledger.Config{
		Network:     app.config.Hedera.Network,
		OperatorID:  app.config.Hedera.OperatorID,
		OperatorKey: app.config.Hedera.OperatorKey,
	}, app.logger)
	if err != nil {
		return err
	}
	app.gateway = gateway

	app.resolver = infraledger.NewMirrorClient(app.config.Hedera.MirrorURL, app.logger)

	if app.config.Registry.Enabled {
		registry, err := tokenregistry.NewContractClient(tokenregistry.Config{
			RPCURL:          app.config.Registry.RPCURL,
			ContractAddress: app.config.Registry.ContractAddress,
			PrivateKey:      app.config.Registry.PrivateKey,
		}, app.logger)
		if err != nil {
			// 注册表是 best-effort 的, 初始化失败只降级不阻断
			app.logger.Warn("Registry contract unavailable, mirror writes disabled", zap.Error(err))
		} else {
			app.registry = registry
		}
	}

	return nil
}

// initBridge 初始化工具注册表/执行器/推理引擎桥
func (app *App) initBridge() error {
	app.toolRegistry = domaintool.NewInMemoryRegistry()

	err := toolpkg.RegisterAllTools(app.toolRegistry, toolpkg.Deps{
		Gateway:  app.gateway,
		Resolver: app.resolver,
		Registry: app.registry,
		Tokens:   app.tokenRepo,
		Logger:   app.logger,
	})
	if err != nil {
		return err
	}

	app.toolExecutor = toolpkg.NewExecutor(app.toolRegistry, app.logger)

	app.engineClient = engine.New(engine.Config{
		BaseURL:     app.config.Engine.BaseURL,
		APIKey:      app.config.Engine.APIKey,
		Model:       app.config.Engine.Model,
		Temperature: app.config.Engine.Temperature,
	}, app.logger)

	bridgeCfg := service.DefaultBridgeConfig()
	bridgeCfg.MaxIterations = app.config.Engine.MaxIterations
	app.bridge = service.NewBridge(app.engineClient, app.toolRegistry, app.toolExecutor, bridgeCfg, app.logger)

	return nil
}

// initApplicationServices 初始化应用服务
func (app *App) initApplicationServices() {
	app.processMessageUseCase = usecase.NewProcessMessageUseCase(
		app.messageRepo,
		app.bridge,
		app.config.Chat.HistoryLimit,
		app.logger,
	)
	app.processPurchaseUseCase = usecase.NewProcessPurchaseUseCase(
		app.gateway,
		app.resolver,
		app.logger,
	)
	app.listTokensUseCase = usecase.NewListTokensUseCase(
		app.registry,
		app.tokenRepo,
		app.logger,
	)
}

// initInterfaces 初始化接口层
func (app *App) initInterfaces() error {
	app.wsHub = websocket.NewHub(app.processMessageUseCase, app.config.Chat.WebThreadID, app.logger)
	wsHandler := websocket.NewHandler(app.wsHub, app.logger)

	app.httpServer = httpServer.NewServer(
		httpServer.Config{
			Host:        app.config.Gateway.Host,
			Port:        app.config.Gateway.Port,
			Mode:        app.config.Gateway.Mode,
			WebThreadID: app.config.Chat.WebThreadID,
		},
		httpServer.UseCases{
			ProcessMessage:  app.processMessageUseCase,
			ProcessPurchase: app.processPurchaseUseCase,
			ListTokens:      app.listTokensUseCase,
		},
		wsHandler,
		app.logger,
	)

	if app.config.Telegram.Enabled {
		adapter, err := telegram.NewAdapter(
			&telegram.Config{
				BotToken:       app.config.Telegram.BotToken,
				AllowedUserIDs: app.config.Telegram.AllowIDs,
				Debug:          app.config.Telegram.Debug,
				SharedThreadID: app.config.Chat.TelegramThread,
				PerChatThreads: app.config.Chat.PerChatTelegram,
			},
			app.processMessageUseCase,
			app.listTokensUseCase,
			app.logger,
		)
		if err != nil {
			return err
		}
		app.telegramAdapter = adapter
	}

	return nil
}

// Start 启动应用程序
func (app *App) Start(ctx context.Context) error {
	app.logger.Info("Starting application",
		zap.String("network", app.config.Hedera.Network),
		zap.String("operator", app.gateway.Operator()),
	)

	hubCtx, cancel := context.WithCancel(ctx)
	app.cancelHub = cancel
	go app.wsHub.Run(hubCtx)

	if err := app.httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if app.telegramAdapter != nil {
		if err := app.telegramAdapter.Start(ctx); err != nil {
			return fmt.Errorf("failed to start telegram adapter: %w", err)
		}
	}

	app.logger.Info("Application started successfully")
	return nil
}

// Stop 停止应用程序
func (app *App) Stop(ctx context.Context) error {
	app.logger.Info("Stopping application")

	if app.telegramAdapter != nil {
		app.telegramAdapter.Stop()
	}

	if app.httpServer != nil {
		if err := app.httpServer.Stop(ctx); err != nil {
			app.logger.Error("Failed to stop HTTP server", zap.Error(err))
		}
	}

	if app.cancelHub != nil {
		app.cancelHub()
	}

	if app.db != nil {
		sqlDB, err := app.db.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				app.logger.Error("Failed to close database connection", zap.Error(err))
			}
		}
	}

	app.logger.Info("Application stopped successfully")
	return nil
}

// ProcessMessageUseCase returns the message processing use case (used by the REPL).
func (app *App) ProcessMessageUseCase() *usecase.ProcessMessageUseCase {
	return app.processMessageUseCase
}

// ListTokensUseCase returns the token listing use case (used by the REPL and CLI).
func (app *App) ListTokensUseCase() *usecase.ListTokensUseCase {
	return app.listTokensUseCase
}

// Gateway returns the ledger gateway (used by the CLI).
func (app *App) Gateway() domainledger.Gateway {
	return app.gateway
}

// Logger returns the application logger.
func (app *App) Logger() *zap.Logger {
	return app.logger
}

// AppConfig returns the application config.
func (app *App) AppConfig() *config.Config {
	return app.config
}
