// Package store opens the user store selected by configuration.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/sqlite"
)

// Store is an opened user store. Pool is set only for Postgres.
type Store struct {
	Repo  repository.UserRepository
	Pool  *pgxpool.Pool
	close func() error
}

func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the configured driver. Postgres migrations run when
// migrate is true.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger, migrate bool) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("using sqlite user store")
		return &Store{Repo: db, close: db.Close}, nil

	case config.StoreDriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if migrate {
			if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		}
		logger.WithField("host", cfg.DBHost).Info("using postgres user store")
		return &Store{
			Repo:  pginfra.NewUserRepository(pool),
			Pool:  pool,
			close: func() error { pool.Close(); return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
