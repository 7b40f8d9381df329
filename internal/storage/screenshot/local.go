package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"feedbackwidget/internal/domain/models/feedback"

	"github.com/google/uuid"
)

// extensions maps the accepted (sniffed) content types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// LocalStore keeps screenshots on local disk under random names and hands
// out URLs below a public base URL.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewLocalStore creates the storage directory if needed
func NewLocalStore(dir, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create screenshot directory: %w", err)
	}

	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Save writes the image and returns its public URL.
// The client-supplied filename is never used on disk.
func (s *LocalStore) Save(ctx context.Context, shot *feedback.Screenshot) (string, error) {
	ext, ok := extensions[shot.ContentType]
	if !ok {
		return "", fmt.Errorf("unsupported screenshot type %q", shot.ContentType)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, shot.Data, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	s.logger.Debug("screenshot stored",
		"name", name,
		"bytes", len(shot.Data),
		"original_name", shot.Filename,
	)

	return s.baseURL + "/" + name, nil
}

// ServeHTTP serves a stored screenshot by name (the {name} path value).
// Only names this store could have produced are looked up.
func (s *LocalStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !validName(name) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}

func validName(name string) bool {
	ext := filepath.Ext(name)
	known := false
	for _, e := range extensions {
		if e == ext {
			known = true
			break
		}
	}
	if !known {
		return false
	}

	_, err := uuid.Parse(strings.TrimSuffix(name, ext))
	return err == nil
}
