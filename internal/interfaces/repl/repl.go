package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application/usecase"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF87")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// REPL 交互式命令行会话
type REPL struct {
	processMessageUseCase *usecase.ProcessMessageUseCase
	listTokensUseCase     *usecase.ListTokensUseCase
	renderer              *glamour.TermRenderer
	logger                *zap.Logger
	threadID              string
	operator              string
	network               string
}

// Config REPL 配置
type Config struct {
	Operator string
	Network  string
}

// New 创建 REPL
func New(
	processUC *usecase.ProcessMessageUseCase,
	listUC *usecase.ListTokensUseCase,
	cfg Config,
	logger *zap.Logger,
) *REPL {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	return &REPL{
		processMessageUseCase: processUC,
		listTokensUseCase:     listUC,
		renderer:              renderer,
		logger:                logger,
		threadID:              fmt.Sprintf("repl_%d", time.Now().UnixNano()),
		operator:              cfg.Operator,
		network:               cfg.Network,
	}
}

// Run starts the interactive loop and blocks until /exit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	r.printBanner()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(promptStyle.Render("you> "), " ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if handled, shouldExit := r.handleCommand(ctx, input); handled {
			if shouldExit {
				return nil
			}
			continue
		}

		reply, err := r.processMessageUseCase.Execute(ctx, r.threadID, input)
		if err != nil {
			fmt.Println(errorStyle.Render("Something went wrong, please try again."))
			r.logger.Error("REPL message processing failed", zap.Error(err))
			continue
		}

		fmt.Println(r.renderMarkdown(reply))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	fmt.Println("\nGoodbye!")
	return nil
}

// handleCommand 处理内置命令, 返回 (handled, shouldExit)
func (r *REPL) handleCommand(ctx context.Context, input string) (bool, bool) {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/exit", "/quit", "/q":
		fmt.Println("Goodbye!")
		return true, true

	case "/new":
		r.threadID = fmt.Sprintf("repl_%d", time.Now().UnixNano())
		fmt.Println(dimStyle.Render("New conversation started"))
		return true, false

	case "/tokens":
		listings, err := r.listTokensUseCase.Execute(ctx)
		if err != nil {
			fmt.Println(errorStyle.Render("Could not list tokens"))
			return true, false
		}
		if len(listings) == 0 {
			fmt.Println(dimStyle.Render("No tokens created yet"))
			return true, false
		}
		var b strings.Builder
		b.WriteString("# Created tokens\n\n")
		for _, listing := range listings {
			if listing.Name != "" {
				fmt.Fprintf(&b, "- `%s` — %s (%s)\n", listing.TokenID, listing.Name, listing.Symbol)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", listing.TokenID)
			}
		}
		fmt.Println(r.renderMarkdown(b.String()))
		return true, false

	case "/help":
		fmt.Println(r.renderMarkdown(
			"**Commands**\n\n" +
				"- `/new` — start a fresh conversation\n" +
				"- `/tokens` — list created tokens\n" +
				"- `/exit` — quit\n\n" +
				"Anything else is sent to the assistant."))
		return true, false
	}

	return false, false
}

func (r *REPL) renderMarkdown(md string) string {
	if r.renderer == nil {
		return md
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func (r *REPL) printBanner() {
	fmt.Println(titleStyle.Render("HashTalk") + dimStyle.Render("  conversational Hedera token gateway"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("network: %s   operator: %s", r.network, r.operator)))
	fmt.Println(dimStyle.Render("type /help for commands"))
	fmt.Println()
}
