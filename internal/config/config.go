package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	DatabaseURL string
	TablePrefix string
	// Auth
	AuthJWKSURL string // Empty in dev falls back to DevUserID
	DevUserID   string
	// Feedback assistant
	AppName     string
	Locale      string
	Model       string // "gpt-4o-mini", "claude-haiku-4-5", "lorem-fast", or "provider/model"
	Temperature float64
	MaxTokens   int
	// LLM providers
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	// GitHub App issue tracker
	GitHub GitHubConfig
	// Screenshots
	ScreenshotDir     string
	ScreenshotBaseURL string
	// Throttling ("max,minutes")
	ChatThrottle  Throttle
	IssueThrottle Throttle
	// Logging
	LogDir      string
	LogMaxFiles int
	// Values that were malformed and replaced by their default
	Warnings []error
}

// GitHubConfig holds the GitHub App credentials and target repository.
type GitHubConfig struct {
	AppID          string
	PrivateKey     string // base64-encoded PEM
	InstallationID string
	RepoOwner      string
	RepoName       string
	FeedbackLabel  string
	APIURL         string
}

// Configured reports whether every credential needed to file issues is present.
func (g GitHubConfig) Configured() bool {
	return g.AppID != "" && g.PrivateKey != "" && g.InstallationID != "" &&
		g.RepoOwner != "" && g.RepoName != ""
}

// Throttle is a request budget per user: Max requests every Per.
type Throttle struct {
	Max int
	Per time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	var warnings []error

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),
		DevUserID:   getEnv("DEV_USER_ID", "dev-user"),
		AppName:     getEnv("FEEDBACK_APP_NAME", getEnv("APP_NAME", "the application")),
		Locale:      getEnv("FEEDBACK_LOCALE", DefaultLocale),
		Model:       getEnv("FEEDBACK_MODEL", "gpt-4o-mini"),
		Temperature: getEnvFloat("FEEDBACK_TEMPERATURE", DefaultTemperature),
		MaxTokens:   getEnvInt("FEEDBACK_MAX_TOKENS", DefaultMaxTokens),
		// LLM Configuration
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GitHub: GitHubConfig{
			AppID:          getEnv("GITHUB_APP_ID", ""),
			PrivateKey:     getEnv("GITHUB_APP_PRIVATE_KEY", ""),
			InstallationID: getEnv("GITHUB_APP_INSTALLATION_ID", ""),
			RepoOwner:      getEnv("GITHUB_REPO_OWNER", ""),
			RepoName:       getEnv("GITHUB_REPO_NAME", ""),
			FeedbackLabel:  getEnv("GITHUB_FEEDBACK_LABEL", "user-feedback"),
			APIURL:         getEnv("GITHUB_API_URL", "https://api.github.com"),
		},
		ScreenshotDir:     getEnv("SCREENSHOT_DIR", "storage/feedback-screenshots"),
		ScreenshotBaseURL: getEnv("SCREENSHOT_BASE_URL", "http://localhost:8080/feedback-screenshots"),
		ChatThrottle:      getEnvThrottle("THROTTLE_CHAT", "10,1", &warnings),
		IssueThrottle:     getEnvThrottle("THROTTLE_ISSUE", "5,1", &warnings),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getEnvInt("LOG_MAX_FILES", 10),
	}
	cfg.Warnings = warnings

	return cfg
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

// ParseThrottle parses a "max,minutes" budget such as "10,1".
func ParseThrottle(s string) (Throttle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Throttle{}, fmt.Errorf("invalid throttle %q (expected max,minutes)", s)
	}

	limit, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || limit <= 0 {
		return Throttle{}, fmt.Errorf("invalid throttle max in %q", s)
	}

	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minutes <= 0 {
		return Throttle{}, fmt.Errorf("invalid throttle window in %q", s)
	}

	return Throttle{Max: limit, Per: time.Duration(minutes) * time.Minute}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

// getEnvThrottle falls back to the default budget when the variable is
// malformed and records why in warnings.
func getEnvThrottle(key, defaultValue string, warnings *[]error) Throttle {
	t, err := ParseThrottle(getEnv(key, defaultValue))
	if err == nil {
		return t
	}
	*warnings = append(*warnings, fmt.Errorf("%s: %w, using %q", key, err, defaultValue))
	t, _ = ParseThrottle(defaultValue)
	return t
}
