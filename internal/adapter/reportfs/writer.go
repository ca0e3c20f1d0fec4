package reportfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/eew-summary/internal/domain"
)

// Writer renders the summary table to a file. The file is replaced in full on
// every load, so rerunning over the same inputs yields identical bytes.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer for path. Parent directories are created on load.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Path returns the destination file path.
func (w *Writer) Path() string { return w.path }

// LoadTable writes rows to a temporary file beside the destination and
// renames it into place.
func (w *Writer) LoadTable(_ context.Context, rows []domain.SummaryRow) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := domain.RenderTable(tmp, rows); err != nil {
		tmp.Close() //nolint:errcheck,gosec // render error takes precedence
		return fmt.Errorf("write summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	w.logger.Info("summary written", "path", w.path, "rows", len(rows))
	return nil
}
