package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"feedbackwidget/internal/capabilities"
	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain/models/feedback"
	feedbackSvc "feedbackwidget/internal/domain/services/feedback"
	"feedbackwidget/internal/repository/memory"
	serviceFeedback "feedbackwidget/internal/service/feedback"
	serviceLLM "feedbackwidget/internal/service/llm"
	"feedbackwidget/internal/tracker/github"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	reportType string
	modelFlag  string
	userFlag   string
	fileIssue  bool
	verbose    bool
)

var (
	cyan   = color.New(color.FgCyan, color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	dim    = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "chatcli",
	Short: "Drive a feedback conversation in the terminal",
	Long: `Runs the feedback assistant against the configured model, one turn per line.
When the assistant has gathered enough detail it prints the issue it would file.

Examples:
  chatcli --type bug
  chatcli --type feature --model lorem-fast
  chatcli --type bug --file        # file the issue with the configured GitHub App

Type 'exit' or 'quit' to end the session.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&reportType, "type", "t", string(feedback.CategoryBug), "Report type: bug, feature or feedback")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model override (defaults to FEEDBACK_MODEL)")
	rootCmd.Flags().StringVarP(&userFlag, "user", "u", "", "Submitter id (defaults to DEV_USER_ID)")
	rootCmd.Flags().BoolVar(&fileIssue, "file", false, "File the resulting issue with the GitHub tracker")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg := config.Load()
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	userID := userFlag
	if userID == "" {
		userID = cfg.DevUserID
	}

	category := feedback.Category(reportType)
	if !category.IsValid() {
		return fmt.Errorf("unknown report type %q (want bug, feature or feedback)", reportType)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	for _, w := range cfg.Warnings {
		logger.Warn("invalid configuration value, using default", "error", w)
	}

	catalog, err := capabilities.NewRegistry()
	if err != nil {
		return fmt.Errorf("load model catalog: %w", err)
	}
	selection, err := serviceLLM.SetupModelClient(cfg, catalog, logger)
	if err != nil {
		return err
	}

	chatService := serviceFeedback.NewChatService(selection.Client, serviceFeedback.ChatConfig{
		Prompt:      serviceFeedback.PromptConfig{AppName: cfg.AppName, Locale: cfg.Locale},
		Model:       selection.Info.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   selection.MaxTokens,
	}, logger)

	fmt.Fprintln(os.Stderr)
	cyan.Fprintf(os.Stderr, "  feedback chat (%s, %s)\n", category, selection.Info)
	dim.Fprintf(os.Stderr, "  Type 'exit' to quit.\n\n")

	result, err := converse(cmd.Context(), chatService, category, userID)
	if err != nil || result == nil {
		return err
	}

	yellow.Fprintln(os.Stderr, "  Issue ready:")
	fmt.Fprintf(os.Stderr, "\n  %s\n\n%s\n\n", result.Title, result.Body)

	if !fileIssue {
		dim.Fprintln(os.Stderr, "  Re-run with --file to create it.")
		return nil
	}

	issueService := serviceFeedback.NewIssueService(
		github.NewClient(cfg.GitHub, logger),
		nil,
		memory.NewSubmissionRepository(),
		logger,
	)
	issue, err := issueService.CreateIssue(cmd.Context(), &feedbackSvc.CreateIssueRequest{
		Title:    result.Title,
		Body:     result.Body,
		Category: category,
		UserID:   userID,
	})
	if err != nil {
		return fmt.Errorf("file issue: %w", err)
	}

	green.Fprintf(os.Stderr, "  Filed #%d: %s\n\n", issue.Number, issue.URL)
	return nil
}

// converse reads user turns until the assistant completes or the user quits.
// Returns nil data when the session ends without a completed report.
func converse(ctx context.Context, chatService feedbackSvc.ChatService, category feedback.Category, userID string) (*feedback.StructuredData, error) {
	scanner := bufio.NewScanner(os.Stdin)
	var history []feedback.Turn

	for {
		green.Fprint(os.Stderr, "  you → ")
		if !scanner.Scan() {
			return nil, scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			dim.Fprintf(os.Stderr, "\n  Bye.\n\n")
			return nil, nil
		}

		result, err := chatService.Chat(ctx, &feedbackSvc.ChatRequest{
			Message:  input,
			History:  history,
			Category: category,
			UserID:   userID,
		})
		if err != nil {
			red.Fprintf(os.Stderr, "  Error: %v\n\n", err)
			continue
		}

		history = append(history,
			feedback.Turn{Role: feedback.RoleUser, Content: input},
			feedback.Turn{Role: feedback.RoleAssistant, Content: result.Reply},
		)

		cyan.Fprint(os.Stderr, "  assistant → ")
		fmt.Fprintf(os.Stderr, "%s\n\n", result.Reply)

		if result.IsComplete {
			return result.StructuredData, nil
		}
	}
}
