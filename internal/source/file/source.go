// Package file serves pricing documents from a directory on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidbz/tarifa/internal/domain"
	"github.com/davidbz/tarifa/internal/observability"
)

// DataConfig locates the document directory.
type DataConfig struct {
	Dir string `env:"DATA_DIR" envDefault:"assets/data"`
}

// Source reads documents from a single directory.
type Source struct {
	root string
}

// NewSource creates a source rooted at cfg.Dir.
func NewSource(cfg *DataConfig) (*Source, error) {
	if cfg == nil || cfg.Dir == "" {
		return nil, errors.New("data directory is required")
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("data directory %q: %w", cfg.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %q is not a directory", cfg.Dir)
	}

	return &Source{root: cfg.Dir}, nil
}

// Fetch reads the named document. Names may not leave the root directory.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if name == "" || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return nil, fmt.Errorf("invalid document name %q: %w", name, domain.ErrDocumentNotFound)
	}

	path := filepath.Join(s.root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	observability.FromContext(ctx).Debug("document read from disk",
		observability.String("path", path),
		observability.Int("bytes", len(data)))

	return data, nil
}
