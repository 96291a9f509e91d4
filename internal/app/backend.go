// Package app opens the storage backends shared by the API server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"photojournal/internal/config"
	"photojournal/internal/database"
	"photojournal/internal/database/migration"
	"photojournal/internal/kvstore"
	"photojournal/internal/storage"
)

// Backend bundles the key-value store holding the journal and the object
// storage holding the photos.
type Backend struct {
	KV     kvstore.Store
	Photos storage.Storage

	closers []func() error
}

var (
	newMinIO    = storage.NewMinIO
	newPostgres = database.NewPostgres
	newSQLite   = database.NewSQLite
)

// Open connects the backends selected by cfg. Photos go to MinIO when an
// endpoint is configured and to process memory otherwise.
func Open(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{}

	if cfg.MinIO.Endpoint != "" {
		objects, err := newMinIO(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("initialize object storage: %w", err)
		}
		b.Photos = objects
	} else {
		logger.Warn("object storage not configured, photos are kept in memory")
		b.Photos = storage.NewMemory()
	}

	var deps kvstore.Backends
	switch cfg.Store.Backend {
	case kvstore.BackendPostgres:
		db, err := newPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := b.useSQL(ctx, db, database.Postgres, logger, cfg.Database.Host); err != nil {
			return nil, err
		}
		deps.SQL = db
	case kvstore.BackendSQLite:
		db, err := newSQLite(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := b.useSQL(ctx, db, database.SQLite, logger, cfg.SQLite.Path); err != nil {
			return nil, err
		}
		deps.SQL = db
	case kvstore.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		deps.Redis = client
	case kvstore.BackendMinIO:
		if cfg.MinIO.Endpoint == "" {
			return nil, fmt.Errorf("minio kv backend requires MINIO_ENDPOINT")
		}
		deps.Objects = b.Photos
	}

	kv, err := kvstore.New(cfg.Store.Backend, cfg.Store.Prefix, deps)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.KV = kv

	logger.Info("backend_ready", "kv_backend", cfg.Store.Backend, "kv_prefix", cfg.Store.Prefix)
	return b, nil
}

func (b *Backend) useSQL(ctx context.Context, db *sql.DB, dialect database.Dialect, logger *slog.Logger, host string) error {
	b.closers = append(b.closers, db.Close)
	if err := migration.EnsureMigrated(ctx, db, dialect, logger, host); err != nil {
		_ = b.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases every connection opened by Open.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
