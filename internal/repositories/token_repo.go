package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type PostgresTokenRepository struct {
	db DBTX
}

func NewPostgresTokenRepository(db DBTX) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

func (r *PostgresTokenRepository) Create(ctx context.Context, token *models.Token) error {
	query := `INSERT INTO tokens (token, status, user_id, project_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, token.Token, token.Status, token.UserID, token.ProjectID).
		Scan(&token.ID, &token.CreatedAt)
	return translate("create token", err)
}

func (r *PostgresTokenRepository) GetByToken(ctx context.Context, token string) (*models.Token, error) {
	query := `SELECT id, token, status, user_id, project_id, created_at FROM tokens WHERE token = $1`

	var t models.Token
	err := r.db.QueryRow(ctx, query, token).Scan(&t.ID, &t.Token, &t.Status, &t.UserID, &t.ProjectID, &t.CreatedAt)
	if err != nil {
		return nil, translate("get token", err)
	}
	return &t, nil
}

func (r *PostgresTokenRepository) List(ctx context.Context, userID, projectID *int64, page reports.Page) ([]*models.Token, int64, error) {
	filter := `WHERE ($1::bigint IS NULL OR user_id = $1) AND ($2::bigint IS NULL OR project_id = $2)`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tokens `+filter, userID, projectID).Scan(&total); err != nil {
		return nil, 0, translate("count tokens", err)
	}

	query := `SELECT id, token, status, user_id, project_id, created_at
	          FROM tokens ` + filter + `
	          ORDER BY id ASC
	          LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, userID, projectID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, translate("query tokens", err)
	}
	defer rows.Close()

	var tokens []*models.Token
	for rows.Next() {
		var t models.Token
		if err := rows.Scan(&t.ID, &t.Token, &t.Status, &t.UserID, &t.ProjectID, &t.CreatedAt); err != nil {
			return nil, 0, translate("scan token", err)
		}
		tokens = append(tokens, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("iterate tokens", err)
	}
	return tokens, total, nil
}

func (r *PostgresTokenRepository) UpdateStatus(ctx context.Context, token string, status models.TokenStatus) error {
	result, err := r.db.Exec(ctx, `UPDATE tokens SET status = $1 WHERE token = $2`, status, token)
	if err != nil {
		return translate("update token status", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTokenRepository) Delete(ctx context.Context, token string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return translate("delete token", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
