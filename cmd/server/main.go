package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"feedbackwidget/internal/auth"
	"feedbackwidget/internal/capabilities"
	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain/repositories"
	"feedbackwidget/internal/handler"
	"feedbackwidget/internal/middleware"
	"feedbackwidget/internal/repository/memory"
	"feedbackwidget/internal/repository/postgres"
	serviceFeedback "feedbackwidget/internal/service/feedback"
	serviceLLM "feedbackwidget/internal/service/llm"
	"feedbackwidget/internal/storage/screenshot"
	"feedbackwidget/internal/tracker/github"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging, optionally teeing into a rotated file
	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer func() { _ = logFile.Close() }()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, logOutput)
	slog.SetDefault(logger)

	for _, w := range cfg.Warnings {
		logger.Warn("invalid configuration value, using default", "error", w)
	}

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verification; dev without a JWKS URL authenticates everyone as DevUserID
	var verifier auth.JWTVerifier
	switch {
	case cfg.AuthJWKSURL != "":
		v, err := auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer func() { _ = v.Close() }()
		verifier = v
	case cfg.Environment == "dev":
		logger.Warn("AUTH_JWKS_URL not set, all requests authenticate as dev user", "user_id", cfg.DevUserID)
	default:
		log.Fatalf("AUTH_JWKS_URL is required outside dev (environment=%s)", cfg.Environment)
	}

	// Submission ledger: Postgres when configured, process memory otherwise
	var submissions repositories.SubmissionRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("database connected", "table", tables.Submissions)

		submissions = postgres.NewSubmissionRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
	} else {
		logger.Warn("DATABASE_URL not set, submission history is kept in memory")
		submissions = memory.NewSubmissionRepository()
	}

	// Model selection
	catalog, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize model catalog: %v", err)
	}
	selection, err := serviceLLM.SetupModelClient(cfg, catalog, logger)
	if err != nil {
		log.Fatalf("Failed to setup model client: %v", err)
	}

	// Issue tracker
	tracker := github.NewClient(cfg.GitHub, logger)
	if !cfg.GitHub.Configured() {
		logger.Warn("GitHub App credentials incomplete, issue filing will fail")
	}

	// Screenshots
	screenshots, err := screenshot.NewLocalStore(cfg.ScreenshotDir, cfg.ScreenshotBaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to create screenshot store: %v", err)
	}

	// Services
	chatService := serviceFeedback.NewChatService(selection.Client, serviceFeedback.ChatConfig{
		Prompt: serviceFeedback.PromptConfig{
			AppName: cfg.AppName,
			Locale:  cfg.Locale,
		},
		Model:           selection.Info.Model,
		Temperature:     cfg.Temperature,
		MaxTokens:       selection.MaxTokens,
		MaxHistoryTurns: config.MaxHistoryTurns,
	}, logger)
	issueService := serviceFeedback.NewIssueService(tracker, screenshots, submissions, logger)

	// Handlers
	feedbackHandler := handler.NewFeedbackHandler(chatService, issueService, logger)
	modelsHandler := handler.NewModelsHandler(cfg, logger, catalog, handler.ActiveModel{
		Provider:  selection.Info.Provider,
		Model:     selection.Info.Model,
		MaxTokens: selection.MaxTokens,
	})

	// Middleware
	requireAuth := middleware.Auth(verifier, cfg.DevUserID, logger)
	chatLimiter := middleware.NewRateLimiter("chat", cfg.ChatThrottle, logger)
	issueLimiter := middleware.NewRateLimiter("issue", cfg.IssueThrottle, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /feedback-screenshots/{name}", screenshots)

	// Authenticated routes; auth runs first so limiters key by user
	mux.Handle("POST /feedback/chat", requireAuth(chatLimiter.Middleware(http.HandlerFunc(feedbackHandler.Chat))))
	mux.Handle("POST /feedback/issue", requireAuth(issueLimiter.Middleware(http.HandlerFunc(feedbackHandler.CreateIssue))))
	mux.Handle("GET /feedback/issues", requireAuth(http.HandlerFunc(feedbackHandler.ListSubmissions)))
	mux.Handle("GET /feedback/models", requireAuth(http.HandlerFunc(modelsHandler.GetModels)))

	// Build middleware chain
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - outermost so pre-flight requests never hit auth
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // Model replies can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port, "model", selection.Info.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
