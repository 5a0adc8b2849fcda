package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Users:    NewPostgresUserRepository(db),
		Projects: NewPostgresProjectRepository(db),
		Tokens:   NewPostgresTokenRepository(db),
		Devices:  NewPostgresDeviceRepository(db),
		Sessions: NewPostgresDeviceSessionRepository(db),
		Logs:     NewPostgresDeviceLogRepository(db),
		LogTags:  NewPostgresLogTagRepository(db),
		Tags:     NewPostgresDeviceTagRepository(db),
		Reports:  NewPostgresReportRepository(db),
	}
}

type PostgresStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, repos: NewRepositories(pool)}
}

func (s *PostgresStore) Repos() Repositories {
	return s.repos
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback(ctx)

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translate("commit transaction", err)
	}
	return nil
}
