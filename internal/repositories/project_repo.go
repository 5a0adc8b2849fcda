package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type PostgresProjectRepository struct {
	db DBTX
}

func NewPostgresProjectRepository(db DBTX) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `INSERT INTO projects (user_id, name)
	          VALUES ($1, $2)
	          RETURNING project_id, created_at`

	err := r.db.QueryRow(ctx, query, project.UserID, project.Name).
		Scan(&project.ID, &project.CreatedAt)
	return translate("create project", err)
}

func (r *PostgresProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT project_id, user_id, name, created_at FROM projects WHERE project_id = $1`

	var p models.Project
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, translate("get project", err)
	}
	return &p, nil
}

// List returns projects, optionally only those owned by userID.
func (r *PostgresProjectRepository) List(ctx context.Context, userID *int64, page reports.Page) ([]*models.Project, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE $1::bigint IS NULL OR user_id = $1`, userID).
		Scan(&total)
	if err != nil {
		return nil, 0, translate("count projects", err)
	}

	query := `SELECT project_id, user_id, name, created_at
	          FROM projects
	          WHERE $1::bigint IS NULL OR user_id = $1
	          ORDER BY project_id ASC
	          LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, translate("query projects", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, 0, translate("scan project", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("iterate projects", err)
	}
	return projects, total, nil
}

func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	result, err := r.db.Exec(ctx, `UPDATE projects SET name = $1 WHERE project_id = $2`, project.Name, project.ID)
	if err != nil {
		return translate("update project", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresProjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE project_id = $1`, id)
	if err != nil {
		return translate("delete project", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
