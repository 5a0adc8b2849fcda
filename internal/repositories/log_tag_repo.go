package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
)

type PostgresLogTagRepository struct {
	db DBTX
}

func NewPostgresLogTagRepository(db DBTX) *PostgresLogTagRepository {
	return &PostgresLogTagRepository{db: db}
}

// GetOrCreate returns the project's tag row for tag, creating it on first
// use. The no-op update makes RETURNING yield the existing row on conflict.
func (r *PostgresLogTagRepository) GetOrCreate(ctx context.Context, projectID int64, tag string) (*models.LogTag, error) {
	query := `INSERT INTO log_tags (project_id, tag)
	          VALUES ($1, $2)
	          ON CONFLICT (project_id, tag) DO UPDATE SET tag = EXCLUDED.tag
	          RETURNING id, project_id, tag`

	var t models.LogTag
	err := r.db.QueryRow(ctx, query, projectID, tag).Scan(&t.ID, &t.ProjectID, &t.Tag)
	if err != nil {
		return nil, translate("get or create log tag", err)
	}
	return &t, nil
}
