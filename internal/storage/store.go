package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"textrpg/server/internal/config"
	"textrpg/server/internal/interfaces"
)

// ErrNotFound is returned by every store when a slot holds no save
var ErrNotFound = errors.New("save slot not found")

// Backend names accepted in persistence.backend
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMySQL    = "mysql"
)

// Open builds the save store selected by cfg.Persistence.Backend
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (interfaces.SaveStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Persistence.Backend))
	if backend == "" {
		backend = BackendMemory
	}

	var (
		store interfaces.SaveStore
		err   error
	)
	switch backend {
	case BackendMemory:
		store = NewMemoryStore()
	case BackendSQLite:
		store, err = NewSQLiteStore(ctx, cfg.Database.SQLite.Path)
	case BackendPostgres:
		store, err = NewPostgresStore(ctx, cfg.Database.Postgres.DSN)
	case BackendRedis:
		store, err = NewRedisStore(ctx, cfg.Database.Redis)
	case BackendMySQL:
		store, err = NewMySQLStore(cfg.Database.MySQL)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", backend, err)
	}

	log.Info("Save store ready", zap.String("backend", backend))
	return store, nil
}
