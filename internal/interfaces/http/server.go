package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
	"github.com/hashtalk/hashtalk/gateway/internal/interfaces/http/handlers"
	ws "github.com/hashtalk/hashtalk/gateway/internal/interfaces/websocket"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// Config HTTP服务器配置
type Config struct {
	Host        string
	Port        int
	Mode        string // local, production
	WebThreadID string
}

// UseCases HTTP 层依赖的应用服务
type UseCases struct {
	ProcessMessage  *usecase.ProcessMessageUseCase
	ProcessPurchase *usecase.ProcessPurchaseUseCase
	ListTokens      *usecase.ListTokensUseCase
}

// NewServer 创建HTTP服务器
func NewServer(cfg Config, ucs UseCases, wsHandler *ws.Handler, logger *zap.Logger) *Server {
	// 设置Gin模式
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logger))

	// 初始化处理器
	chatHandler := handlers.NewChatHandler(ucs.ProcessMessage, cfg.WebThreadID, logger)
	tokenHandler := handlers.NewTokenHandler(ucs.ListTokens, logger)
	mintHandler := handlers.NewMintHandler(ucs.ProcessPurchase, logger)

	// 注册路由
	setupRoutes(router, chatHandler, tokenHandler, mintHandler, wsHandler)

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	return &Server{
		server: server,
		logger: logger,
	}
}

// Start 启动服务器
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// setupRoutes 设置路由
func setupRoutes(
	router *gin.Engine,
	chatHandler *handlers.ChatHandler,
	tokenHandler *handlers.TokenHandler,
	mintHandler *handlers.MintHandler,
	wsHandler *ws.Handler,
) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API版本1
	v1 := router.Group("/api/v1")
	{
		v1.POST("/chat", chatHandler.Chat)
		v1.POST("/chat/reset", chatHandler.Reset)
		v1.GET("/tokens", tokenHandler.ListTokens)
		v1.POST("/mint", mintHandler.Mint)
	}

	// WebSocket 聊天
	if wsHandler != nil {
		router.GET("/ws", func(c *gin.Context) {
			wsHandler.ServeWS(c.Writer, c.Request)
		})
	}
}

// ginLogger Gin日志中间件
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
