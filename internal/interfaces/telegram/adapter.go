package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
)

// Config Telegram 适配器配置
type Config struct {
	BotToken       string
	AllowedUserIDs []int64 // 为空则放行所有用户
	Debug          bool
	// SharedThreadID is the single conversation thread every chat shares
	// when PerChatThreads is off.
	SharedThreadID string
	PerChatThreads bool
}

// Adapter Telegram 适配器 (polling 模式)
type Adapter struct {
	bot                   *tgbotapi.BotAPI
	config                *Config
	processMessageUseCase *usecase.ProcessMessageUseCase
	listTokensUseCase     *usecase.ListTokensUseCase
	logger                *zap.Logger
	cancel                context.CancelFunc
}

// NewAdapter 创建 Telegram 适配器
func NewAdapter(
	config *Config,
	processUC *usecase.ProcessMessageUseCase,
	listUC *usecase.ListTokensUseCase,
	logger *zap.Logger,
) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot.Debug = config.Debug

	logger.Info("Telegram bot authorized",
		zap.String("username", bot.Self.UserName),
	)

	return &Adapter{
		bot:                   bot,
		config:                config,
		processMessageUseCase: processUC,
		listTokensUseCase:     listUC,
		logger:                logger,
	}, nil
}

// Start 启动适配器 (轮询模式)
func (a *Adapter) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	innerCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.setupBotCommands(); err != nil {
		a.logger.Warn("Failed to setup bot commands", zap.Error(err))
	}

	updates := a.bot.GetUpdatesChan(u)

	a.logger.Info("Starting Telegram polling")

	go func() {
		for {
			select {
			case <-innerCtx.Done():
				a.bot.StopReceivingUpdates()
				a.logger.Info("Telegram adapter stopped")
				return
			case update := <-updates:
				go a.handleUpdate(innerCtx, update)
			}
		}
	}()

	return nil
}

// Stop 停止适配器
func (a *Adapter) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}

// setupBotCommands 设置 Bot 命令菜单
func (a *Adapter) setupBotCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Welcome and capabilities"},
		{Command: "new", Description: "Start a fresh conversation"},
		{Command: "tokens", Description: "List created tokens"},
		{Command: "help", Description: "Help"},
	}

	_, err := a.bot.Request(tgbotapi.NewSetMyCommands(commands...))
	if err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}

// handleUpdate 处理更新
func (a *Adapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	if !a.allowed(msg.From) {
		a.logger.Debug("Ignoring message from disallowed user",
			zap.Int64("user_id", msg.From.ID),
		)
		return
	}

	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	a.handleChat(ctx, msg)
}

// allowed 检查用户是否在允许列表中
func (a *Adapter) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if len(a.config.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range a.config.AllowedUserIDs {
		if id == from.ID {
			return true
		}
	}
	return false
}

// handleCommand 处理命令
func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		a.sendPlain(msg.Chat.ID,
			"Hi! I can create, mint and transfer fungible tokens on Hedera.\n"+
				"Just tell me what you need, e.g. \"create a token named GreenEnergy with symbol GREN\".")
	case "help":
		a.sendPlain(msg.Chat.ID,
			"Talk to me in plain language. I can:\n"+
				"• create fungible tokens\n"+
				"• mint more supply\n"+
				"• transfer tokens between accounts\n"+
				"• check HBAR balances and token info\n\n"+
				"/new starts a fresh conversation, /tokens lists created tokens.")
	case "new":
		if err := a.processMessageUseCase.Reset(ctx, a.threadID(msg.Chat.ID)); err != nil {
			a.logger.Error("Failed to reset thread", zap.Error(err))
			a.sendPlain(msg.Chat.ID, "Could not start a new conversation, please try again.")
			return
		}
		a.sendPlain(msg.Chat.ID, "Started a new conversation.")
	case "tokens":
		a.handleTokensCommand(ctx, msg.Chat.ID)
	default:
		a.sendPlain(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

// handleTokensCommand 列出已创建的代币
func (a *Adapter) handleTokensCommand(ctx context.Context, chatID int64) {
	listings, err := a.listTokensUseCase.Execute(ctx)
	if err != nil {
		a.logger.Error("Failed to list tokens", zap.Error(err))
		a.sendPlain(chatID, "Could not list tokens, please try again later.")
		return
	}

	if len(listings) == 0 {
		a.sendPlain(chatID, "No tokens have been created yet.")
		return
	}

	var b strings.Builder
	b.WriteString("*Created tokens:*\n")
	for _, listing := range listings {
		if listing.Name != "" {
			fmt.Fprintf(&b, "• `%s` — %s (%s)\n", listing.TokenID, listing.Name, listing.Symbol)
		} else {
			fmt.Fprintf(&b, "• `%s`\n", listing.TokenID)
		}
	}
	a.sendMarkdown(chatID, b.String())
}

// handleChat 处理一轮对话
func (a *Adapter) handleChat(ctx context.Context, msg *tgbotapi.Message) {
	// 工具调用轮次需要等待链上共识, 先给出输入状态
	a.bot.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping))

	reply, err := a.processMessageUseCase.Execute(ctx, a.threadID(msg.Chat.ID), msg.Text)
	if err != nil {
		a.logger.Error("Failed to process telegram message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err),
		)
		a.sendPlain(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}

	if reply == "" {
		reply = "Done."
	}
	a.sendMarkdown(msg.Chat.ID, reply)
}

// threadID returns the conversation thread for a chat. Per-chat threads
// keep group conversations isolated; the shared thread reproduces the
// original single-session behavior.
func (a *Adapter) threadID(chatID int64) string {
	if a.config.PerChatThreads {
		return fmt.Sprintf("telegram:%d", chatID)
	}
	return a.config.SharedThreadID
}

// sendMarkdown renders Markdown to Telegram HTML, chunks it under the
// message limit and falls back to plain text when Telegram rejects the
// formatting.
func (a *Adapter) sendMarkdown(chatID int64, markdown string) {
	rendered := MarkdownToTelegramHTML(markdown)
	for _, chunk := range ChunkMessage(rendered) {
		out := tgbotapi.NewMessage(chatID, chunk)
		out.ParseMode = tgbotapi.ModeHTML
		if _, err := a.bot.Send(out); err != nil {
			a.logger.Warn("HTML send failed, retrying as plain text", zap.Error(err))
			a.sendPlain(chatID, chunk)
		}
	}
}

// sendPlain 发送纯文本消息
func (a *Adapter) sendPlain(chatID int64, text string) {
	for _, chunk := range ChunkMessage(text) {
		if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			a.logger.Error("Failed to send telegram message",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}
}
