package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/application"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/config"
	"github.com/hashtalk/hashtalk/gateway/internal/infrastructure/logger"
)

const (
	cliName    = "hashtalk"
	cliVersion = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   cliName,
		Short: "HashTalk — conversational Hedera token gateway",
		Long:  "HashTalk CLI — 通过自然语言创建/铸造/转账 Hedera 同质化代币",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "chat [message...]",
		Short: "发送一条消息并打印回复",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChat,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "tokens",
		Short: "列出已创建的代币",
		RunE:  runTokens,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "balance [account]",
		Short: "查询 HBAR 余额 (缺省查询操作员账户)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBalance,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s v%s\n", cliName, cliVersion)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp builds a lightweight app with a quiet logger.
func newApp() (*application.App, error) {
	log, err := logger.NewLogger(logger.Config{
		Level:  "error",
		Format: "console",
	})
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return application.NewAppREPL(cfg, log)
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Stop(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	threadID := fmt.Sprintf("cli_%d", time.Now().UnixNano())
	reply, err := app.ProcessMessageUseCase().Execute(ctx, threadID, strings.Join(args, " "))
	if err != nil {
		app.Logger().Error("Chat failed", zap.Error(err))
		return fmt.Errorf("chat failed")
	}

	fmt.Println(reply)
	return nil
}

func runTokens(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Stop(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listings, err := app.ListTokensUseCase().Execute(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tokens")
	}

	if len(listings) == 0 {
		fmt.Println("No tokens created yet.")
		return nil
	}

	for _, listing := range listings {
		if listing.Name != "" {
			fmt.Printf("%-12s %s (%s)\n", listing.TokenID, listing.Name, listing.Symbol)
		} else {
			fmt.Println(listing.TokenID)
		}
	}
	return nil
}

func runBalance(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Stop(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	account := ""
	if len(args) > 0 {
		account = args[0]
	}

	balance, err := app.Gateway().HbarBalance(ctx, account)
	if err != nil {
		return fmt.Errorf("balance query failed")
	}

	if account == "" {
		account = app.Gateway().Operator()
	}
	fmt.Printf("%s: %v HBAR\n", account, balance)
	return nil
}
