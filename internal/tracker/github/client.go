package github

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/domain/models/feedback"

	"github.com/golang-jwt/jwt/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
)

const (
	// Installation tokens live for an hour; refresh well before that.
	tokenCacheTTL = 3000 * time.Second

	// GitHub rejects app JWTs valid for more than ten minutes.
	appJWTLifetime = 9 * time.Minute

	requestTimeout = 10 * time.Second
	apiVersion     = "2022-11-28"

	// Longest response excerpt carried in a TrackerError.
	maxErrorDetail = 512
)

// Proxies in front of the API answer with HTML error pages.
var errorPagePolicy = bluemonday.StrictPolicy()

// ErrNotConfigured is returned when app credentials or the target repository are missing.
var ErrNotConfigured = fmt.Errorf("GitHub feedback service is not configured: %w", domain.ErrNotConfigured)

// Client implements the feedback IssueTracker against the GitHub REST API.
type Client struct {
	cfg        config.GitHubConfig
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a GitHub App client for the configured repository
func NewClient(cfg config.GitHubConfig, logger *slog.Logger) *Client {
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
		now:        time.Now,
	}
}

// CreateIssue opens an issue labelled with the feedback label and the
// category label. The submitter is credited in a footer line.
func (c *Client) CreateIssue(ctx context.Context, draft feedback.IssueDraft) (*feedback.Issue, error) {
	if !c.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	token, err := c.installationToken(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"title":  draft.Title,
		"body":   draft.Body + "\n\n---\n_Submitted via feedback widget by user " + draft.Submitter + "_",
		"labels": c.labels(draft.Category),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal issue: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues", c.cfg.APIURL, c.cfg.RepoOwner, c.cfg.RepoName)
	status, body, err := c.post(ctx, url, token, payload)
	if err != nil {
		return nil, &domain.TrackerError{Op: "Failed to create GitHub issue", Err: err}
	}
	if status == http.StatusUnauthorized {
		// Token revoked before its cache entry expired
		c.forgetToken()
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, &domain.TrackerError{
			Op:     "Failed to create GitHub issue",
			Status: status,
			Err:    fmt.Errorf("%d: %s", status, responseDetail(body)),
		}
	}

	issue := &feedback.Issue{
		URL:    gjson.GetBytes(body, "html_url").String(),
		Number: int(gjson.GetBytes(body, "number").Int()),
	}

	c.logger.Debug("github issue created",
		"repo", c.cfg.RepoOwner+"/"+c.cfg.RepoName,
		"number", issue.Number,
	)

	return issue, nil
}

func (c *Client) labels(category feedback.Category) []string {
	labels := make([]string, 0, 2)
	if c.cfg.FeedbackLabel != "" {
		labels = append(labels, c.cfg.FeedbackLabel)
	}
	return append(labels, category.TrackerLabel())
}

// installationToken returns the cached installation token, exchanging a
// fresh app JWT for a new one when the cache is empty or stale.
func (c *Client) installationToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	appJWT, err := c.appJWT()
	if err != nil {
		return "", &domain.TrackerError{Op: "Failed to get installation token", Err: err}
	}

	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", c.cfg.APIURL, c.cfg.InstallationID)
	status, body, err := c.post(ctx, url, appJWT, nil)
	if err != nil {
		return "", &domain.TrackerError{Op: "Failed to get installation token", Err: err}
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", &domain.TrackerError{
			Op:     "Failed to get installation token",
			Status: status,
			Err:    fmt.Errorf("%d: %s", status, responseDetail(body)),
		}
	}

	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return "", &domain.TrackerError{
			Op:     "Failed to get installation token",
			Status: status,
			Err:    fmt.Errorf("response has no token"),
		}
	}

	c.token = token
	c.tokenExpiry = c.now().Add(tokenCacheTTL)
	return token, nil
}

func (c *Client) forgetToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// appJWT signs the short-lived RS256 token that authenticates as the app.
func (c *Client) appJWT() (string, error) {
	key, err := parsePrivateKey(c.cfg.PrivateKey)
	if err != nil {
		return "", err
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.cfg.AppID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign app JWT: %w", err)
	}
	return signed, nil
}

// parsePrivateKey accepts the PEM either base64-encoded (as stored in the
// environment) or raw.
func parsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	pem := []byte(encoded)
	if !strings.HasPrefix(strings.TrimSpace(encoded), "-----BEGIN") {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}
		pem = decoded
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

func (c *Client) post(ctx context.Context, url, bearer string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// responseDetail renders an error response for logs and TrackerError
// messages. JSON bodies pass through; anything else is reduced to text.
func responseDetail(body []byte) string {
	detail := string(body)
	if !gjson.ValidBytes(body) {
		text := html.UnescapeString(errorPagePolicy.Sanitize(detail))
		detail = strings.Join(strings.Fields(text), " ")
	}
	if len(detail) > maxErrorDetail {
		detail = strings.ToValidUTF8(detail[:maxErrorDetail], "") + "..."
	}
	return detail
}
