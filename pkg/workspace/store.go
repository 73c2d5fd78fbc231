// Package workspace manages the local staging area for direct sources and the
// archive directory that receives untruncated copies of oversized responses.
package workspace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/config"
)

// Store stages source files into the workspace directory and archives
// full-length response bodies for later retrieval.
type Store struct {
	dir        string
	archiveDir string
	linkFiles  bool
	httpClient *http.Client
	logger     *zap.Logger
}

// NewStore creates a Store rooted at the configured workspace directories.
// Both directories are created on first use, not here.
func NewStore(cfg config.WorkspaceConfig, logger *zap.Logger) *Store {
	return &Store{
		dir:        cfg.Dir,
		archiveDir: cfg.ArchiveDir,
		linkFiles:  cfg.LinkFiles,
		httpClient: http.DefaultClient,
		logger:     logger.Named("workspace"),
	}
}

// Dir returns the staging directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Stage makes a direct source available under the workspace directory and
// returns the staged path. Local files are copied (or symlinked when link
// mode is on); http(s) endpoints are downloaded.
func (s *Store) Stage(ctx context.Context, endpoint string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace dir: %w", err)
	}

	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return s.download(ctx, endpoint)
	}

	dest := filepath.Join(s.dir, filepath.Base(endpoint))
	abs, err := filepath.Abs(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source path: %w", err)
	}
	if abs == dest {
		return dest, nil
	}

	if s.linkFiles {
		// Replace any stale link from a previous run.
		_ = os.Remove(dest)
		if err := os.Symlink(abs, dest); err != nil {
			return "", fmt.Errorf("failed to link %s into workspace: %w", endpoint, err)
		}
		s.logger.Debug("linked source into workspace",
			zap.String("endpoint", endpoint),
			zap.String("path", dest))
		return dest, nil
	}

	if err := copyFile(abs, dest); err != nil {
		return "", fmt.Errorf("failed to copy %s into workspace: %w", endpoint, err)
	}
	s.logger.Debug("copied source into workspace",
		zap.String("endpoint", endpoint),
		zap.String("path", dest))
	return dest, nil
}

func (s *Store) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	name := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "/" || name == "." {
		name = uuid.NewString()
	}
	dest := filepath.Join(s.dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	s.logger.Info("downloaded source into workspace",
		zap.String("url", url),
		zap.String("path", dest))
	return dest, nil
}

// Archive writes content to the archive directory under a unique name derived
// from label and returns the written path. Callers embed the path in
// truncation markers so the full body stays reachable.
func (s *Store) Archive(label, content string) (string, error) {
	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.txt", sanitizeLabel(label), uuid.NewString()[:8])
	path := filepath.Join(s.archiveDir, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to archive response: %w", err)
	}
	return path, nil
}

func sanitizeLabel(label string) string {
	if label == "" {
		return "response"
	}
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
