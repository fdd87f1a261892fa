package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dirkste/compass-automation/internal/storage"
	storageio "github.com/dirkste/compass-automation/internal/storage/io"
)

// loadConfig loads the application configuration. A missing file is not an
// error: everything has a sane default.
func loadConfig(ctx context.Context, path string) (storage.Config, error) {
	absPath := path
	if !filepath.IsAbs(absPath) {
		p, err := filepath.Abs(absPath)
		if err != nil {
			return storage.Config{}, fmt.Errorf("could not resolve config path: %w", err)
		}
		absPath = p
	}

	repo := storageio.NewConfigYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetConfig(ctx, absPath[1:])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storageio.DefaultConfig(), nil
		}
		return storage.Config{}, err
	}

	return cfg, nil
}

// loadQueue loads and validates the identifier queue from a flat file.
func loadQueue(ctx context.Context, path string) ([]string, error) {
	absPath := path
	if !filepath.IsAbs(absPath) {
		p, err := filepath.Abs(absPath)
		if err != nil {
			return nil, fmt.Errorf("could not resolve queue path: %w", err)
		}
		absPath = p
	}

	repo := storageio.NewQueueCSVRepository(os.DirFS("/"))
	return repo.GetQueue(ctx, absPath[1:])
}
