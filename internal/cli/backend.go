package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
)

func openAdapter(ctx context.Context, cfg config.Config) (store.Adapter, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nil
	case config.BackendSQLite:
		dir := cfg.DataDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("getwd: %w", err)
			}
			dir = wd
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
		return sqlitestore.Open(ctx, filepath.Join(dir, sqlitestore.FileName))
	case config.BackendJSON, "":
		return jsonstore.New(cfg.DataDir)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
