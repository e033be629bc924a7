// Command promptcli is an interactive terminal client that runs prompts
// through the same pipeline as the server, without HTTP.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"promptlab/internal/app"
	"promptlab/internal/config"
	"promptlab/internal/domain"
	llmSvc "promptlab/internal/domain/services/llm"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx      context.Context
	services *app.Services
	cfg      *config.Config
	scanner  *bufio.Scanner
	userID   string
	logger   *slog.Logger
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, logFile, err := setupLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("session started", "log_file", logFile)

	userID := os.Getenv("PROMPTLAB_USER_ID")
	if userID == "" {
		userID = "cli"
	}

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to open database: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer store.Close()

	services, err := app.SetupServices(cfg, store, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup services: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	cli := &CLI{
		ctx:      ctx,
		services: services,
		cfg:      cfg,
		scanner:  bufio.NewScanner(os.Stdin),
		userID:   userID,
		logger:   logger,
	}
	cli.run()
}

// setupLogger keeps the console quiet and writes everything to a log file
func setupLogger(cfg *config.Config) (*slog.Logger, string, error) {
	dir := cfg.LogDir
	if dir == "" {
		dir = "logs"
	}
	f, err := config.SetupLogFile(dir, cfg.LogMaxFiles)
	if err != nil {
		return nil, "", err
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	return logger, f.Name(), nil
}

func (cli *CLI) run() {
	fmt.Printf("\n%s╔══════════════════════════════════════╗%s\n", colorCyan, colorReset)
	fmt.Printf("%s║          promptlab CLI               ║%s\n", colorCyan, colorReset)
	fmt.Printf("%s╚══════════════════════════════════════╝%s\n", colorCyan, colorReset)
	fmt.Printf("%sUser: %s | Default model: %s%s\n", colorBlue, cli.userID, cli.cfg.DefaultModel, colorReset)

	for {
		fmt.Println("\n" + strings.Repeat("─", 40))
		fmt.Println("Main Menu:")
		fmt.Println("1. Start a new conversation")
		fmt.Println("2. Continue a conversation")
		fmt.Println("3. View conversation history")
		fmt.Println("4. Provider status")
		fmt.Println("5. Exit")
		fmt.Print("\nSelect option (1-5): ")

		choice := cli.readLine()
		fmt.Println()
		cli.logger.Debug("menu selection", "choice", choice)

		switch choice {
		case "1":
			cli.promptFlow(nil)
		case "2":
			fmt.Print("Conversation ID: ")
			id := cli.readLine()
			if id == "" {
				fmt.Printf("%s⚠ Conversation ID cannot be empty%s\n", colorYellow, colorReset)
				continue
			}
			cli.promptFlow(&id)
		case "3":
			fmt.Print("Conversation ID: ")
			cli.viewHistory(cli.readLine())
		case "4":
			cli.providerStatus()
		case "5", "":
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		default:
			fmt.Printf("%s⚠ Invalid choice. Please enter 1-5.%s\n", colorYellow, colorReset)
		}
	}
}

func (cli *CLI) promptFlow(conversationID *string) {
	for {
		fmt.Print("Your message (empty to return): ")
		message := cli.readLine()
		if message == "" {
			return
		}

		req := &llmSvc.ExecuteRequest{
			UserID:         cli.userID,
			Prompt:         message,
			ConversationID: conversationID,
		}
		if model := cli.selectModel(); model != "" {
			req.Model = &model
		}
		req.Temperature = cli.selectTemperature()

		fmt.Printf("\n%s⏳ Waiting for response...%s\n", colorBlue, colorReset)
		result, err := cli.services.Executor.Execute(cli.ctx, req)
		if err != nil {
			cli.printError(err)
			return
		}

		fmt.Printf("\n%s%s%s\n\n", colorGreen, result.Content, colorReset)
		fmt.Printf("%s[%s/%s] in=%d out=%d cost=$%.6f latency=%dms conversation=%s%s\n",
			colorBlue, result.Provider, result.Model, result.InputTokens, result.OutputTokens,
			result.Cost, result.LatencyMs, result.ConversationID, colorReset)

		conversationID = &result.ConversationID
	}
}

func (cli *CLI) selectModel() string {
	fmt.Printf("Model [%s]: ", cli.cfg.DefaultModel)
	return cli.readLine()
}

// selectTemperature returns nil to keep the provider default
func (cli *CLI) selectTemperature() *float64 {
	fmt.Print("Temperature 0-2 [provider default]: ")
	raw := cli.readLine()
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Printf("%s⚠ Invalid value, using default%s\n", colorYellow, colorReset)
		return nil
	}
	return &val
}

func (cli *CLI) viewHistory(conversationID string) {
	history, err := cli.services.History.GetConversationHistory(cli.ctx, conversationID, cli.userID)
	if err != nil {
		cli.printError(err)
		return
	}

	fmt.Printf("%s=== %s ===%s\n", colorCyan, history.Conversation.Title, colorReset)
	for _, ex := range history.Exchanges {
		fmt.Printf("\n%s[%s] You:%s %s\n", colorBlue, ex.Prompt.CreatedAt.Format(time.DateTime), colorReset, ex.Prompt.Content)
		if ex.Response == nil {
			fmt.Printf("%s(no response)%s\n", colorYellow, colorReset)
			continue
		}
		fmt.Printf("%s%s:%s %s\n", colorGreen, ex.Response.Model, colorReset, ex.Response.Content)
	}
}

func (cli *CLI) providerStatus() {
	statuses := cli.services.Router.Availability(cli.ctx, cli.cfg.ProviderCheckTime)
	if len(statuses) == 0 {
		fmt.Printf("%s⚠ No providers configured%s\n", colorYellow, colorReset)
		return
	}
	for _, s := range statuses {
		mark, color := "✓", colorGreen
		if !s.Available {
			mark, color = "✗", colorRed
		}
		fmt.Printf("%s%s %s (%s)%s\n", color, mark, s.DisplayName, s.Provider, colorReset)
	}
}

func (cli *CLI) printError(err error) {
	cli.logger.Error("request failed", "error", err)

	var rateErr *domain.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		fmt.Printf("%s⚠ Rate limited, retry in %s%s\n", colorYellow, rateErr.RetryAfter.Round(time.Second), colorReset)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		fmt.Printf("%s⚠ %v%s\n", colorYellow, err, colorReset)
	default:
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
	}
}

func (cli *CLI) readLine() string {
	if !cli.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(cli.scanner.Text())
}
