// internal/common/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"jobportal/internal/common/config"
	"jobportal/internal/common/database"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("record not found")

// Store persists named client-side records. Values are opaque JSON documents;
// callers validate them on read.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the backend selected by storage.backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		return NewFileStore(cfg.Storage.Dir)
	case "redis":
		return NewRedisStore(database.NewRedis(cfg.Database.Redis).Client, cfg.Storage.KeyPrefix), nil
	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		s := NewPostgresStore(pg.DB, cfg.Storage.Table)
		if err := s.EnsureTable(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
