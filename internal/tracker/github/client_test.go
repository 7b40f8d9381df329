package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/domain"
	"feedbackwidget/internal/domain/models/feedback"

	"github.com/golang-jwt/jwt/v5"
)

type fakeGitHub struct {
	t          *testing.T
	key        *rsa.PrivateKey
	tokenCalls atomic.Int32
	issueCalls atomic.Int32

	mu          sync.Mutex
	tokenStatus int
	issueStatus int
	issueError  string
	lastIssue   map[string]interface{}
}

func (f *fakeGitHub) setStatus(token, issue int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenStatus, f.issueStatus = token, issue
}

func (f *fakeGitHub) issue() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastIssue
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/app/installations/99/access_tokens":
		f.tokenCalls.Add(1)
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return &f.key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		if err != nil || claims.Issuer != "12345" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"bad jwt"}`))
			return
		}
		if lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time); lifetime > 10*time.Minute {
			f.t.Errorf("app JWT lifetime = %v", lifetime)
		}
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"ghs_installation","expires_at":"2030-01-01T00:00:00Z"}`))

	case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/app/issues":
		f.issueCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer ghs_installation" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.lastIssue = nil
		json.Unmarshal(body, &f.lastIssue)
		if f.issueStatus != 0 {
			w.WriteHeader(f.issueStatus)
			if f.issueError != "" {
				w.Write([]byte(f.issueError))
			} else {
				w.Write([]byte(`{"message":"Validation Failed"}`))
			}
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number":17,"html_url":"https://github.com/acme/app/issues/17","title":"x"}`))

	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeGitHub) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	fake := &fakeGitHub{t: t, key: key}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := NewClient(config.GitHubConfig{
		AppID:          "12345",
		PrivateKey:     base64.StdEncoding.EncodeToString(pemBytes),
		InstallationID: "99",
		RepoOwner:      "acme",
		RepoName:       "app",
		FeedbackLabel:  "user-feedback",
		APIURL:         srv.URL + "/",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return client, fake
}

func TestCreateIssue(t *testing.T) {
	client, fake := newTestClient(t)

	issue, err := client.CreateIssue(context.Background(), feedback.IssueDraft{
		Title:     "[Bug] Save fails",
		Body:      "## Steps",
		Category:  feedback.CategoryBug,
		Submitter: "42",
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.Number != 17 || issue.URL != "https://github.com/acme/app/issues/17" {
		t.Errorf("issue = %+v", issue)
	}

	if got := fake.issue()["title"]; got != "[Bug] Save fails" {
		t.Errorf("title = %v", got)
	}
	wantBody := "## Steps\n\n---\n_Submitted via feedback widget by user 42_"
	if got := fake.issue()["body"]; got != wantBody {
		t.Errorf("body = %q, want %q", got, wantBody)
	}
	labels, _ := fake.issue()["labels"].([]interface{})
	if len(labels) != 2 || labels[0] != "user-feedback" || labels[1] != "bug" {
		t.Errorf("labels = %v", labels)
	}
}

func TestCreateIssue_CategoryLabels(t *testing.T) {
	client, fake := newTestClient(t)

	for category, want := range map[feedback.Category]string{
		feedback.CategoryBug:      "bug",
		feedback.CategoryFeature:  "enhancement",
		feedback.CategoryFeedback: "feedback",
	} {
		if _, err := client.CreateIssue(context.Background(), feedback.IssueDraft{Title: "t", Body: "b", Category: category}); err != nil {
			t.Fatalf("%s: %v", category, err)
		}
		labels, _ := fake.issue()["labels"].([]interface{})
		if len(labels) != 2 || labels[1] != want {
			t.Errorf("%s labels = %v, want second label %s", category, labels, want)
		}
	}
}

func TestCreateIssue_CachesInstallationToken(t *testing.T) {
	client, fake := newTestClient(t)
	// The fake server validates exp, so the clock stays near real time
	now := time.Now()
	client.now = func() time.Time { return now }

	draft := feedback.IssueDraft{Title: "t", Body: "b", Category: feedback.CategoryFeature}
	for i := 0; i < 3; i++ {
		if _, err := client.CreateIssue(context.Background(), draft); err != nil {
			t.Fatal(err)
		}
	}
	if got := fake.tokenCalls.Load(); got != 1 {
		t.Errorf("token requests = %d, want 1", got)
	}

	now = now.Add(tokenCacheTTL + time.Second)
	if _, err := client.CreateIssue(context.Background(), draft); err != nil {
		t.Fatal(err)
	}
	if got := fake.tokenCalls.Load(); got != 2 {
		t.Errorf("token requests after expiry = %d, want 2", got)
	}
}

func TestCreateIssue_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		client := NewClient(config.GitHubConfig{APIURL: "http://unused"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err := client.CreateIssue(context.Background(), feedback.IssueDraft{})
		if !errors.Is(err, domain.ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
		if !strings.Contains(err.Error(), "GitHub feedback service is not configured") {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("token exchange fails", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.setStatus(http.StatusNotFound, 0)

		_, err := client.CreateIssue(context.Background(), feedback.IssueDraft{Title: "t", Body: "b"})
		var trackerErr *domain.TrackerError
		if !errors.As(err, &trackerErr) {
			t.Fatalf("error = %v, want *domain.TrackerError", err)
		}
		if trackerErr.Status != http.StatusNotFound {
			t.Errorf("Status = %d", trackerErr.Status)
		}
		if !strings.HasPrefix(err.Error(), "Failed to get installation token: 404: ") {
			t.Errorf("message = %q", err.Error())
		}
		if fake.issueCalls.Load() != 0 {
			t.Error("issue endpoint should not be called without a token")
		}
	})

	t.Run("issue creation fails", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.setStatus(0, http.StatusUnprocessableEntity)

		_, err := client.CreateIssue(context.Background(), feedback.IssueDraft{Title: "t", Body: "b"})
		if err == nil || !strings.HasPrefix(err.Error(), "Failed to create GitHub issue: 422: ") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("html error page", func(t *testing.T) {
		client, fake := newTestClient(t)
		fake.setStatus(0, http.StatusBadGateway)
		fake.mu.Lock()
		fake.issueError = "<html><body><h1>502   Bad Gateway</h1>\n<p>nginx</p></body></html>"
		fake.mu.Unlock()

		_, err := client.CreateIssue(context.Background(), feedback.IssueDraft{Title: "t", Body: "b"})
		if err == nil || err.Error() != "Failed to create GitHub issue: 502: 502 Bad Gateway nginx" {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("bad private key", func(t *testing.T) {
		client, _ := newTestClient(t)
		client.cfg.PrivateKey = "not base64!"

		_, err := client.CreateIssue(context.Background(), feedback.IssueDraft{Title: "t", Body: "b"})
		if err == nil || !strings.Contains(err.Error(), "Failed to get installation token") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestResponseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "json kept", body: `{"message":"Validation Failed","errors":[{"field":"title"}]}`, want: `{"message":"Validation Failed","errors":[{"field":"title"}]}`},
		{name: "html stripped", body: "<p>Service &amp; API <b>unavailable</b></p>", want: "Service & API unavailable"},
		{name: "empty", body: "", want: ""},
		{name: "truncated", body: strings.Repeat("x", maxErrorDetail+10), want: strings.Repeat("x", maxErrorDetail) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseDetail([]byte(tt.body)); got != tt.want {
				t.Errorf("responseDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePrivateKey_AcceptsRawPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	raw := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))

	parsed, err := parsePrivateKey(raw)
	if err != nil {
		t.Fatalf("parsePrivateKey: %v", err)
	}
	if !parsed.PublicKey.Equal(&key.PublicKey) {
		t.Error("parsed key does not match")
	}
}
