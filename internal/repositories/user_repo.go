package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type PostgresUserRepository struct {
	db DBTX
}

func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, email)
              VALUES ($1, $2)
              RETURNING user_id, created_at`

	err := r.db.QueryRow(ctx, query, user.Username, user.Email).
		Scan(&user.ID, &user.CreatedAt)
	return translate("create user", err)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT user_id, username, email, created_at FROM users WHERE user_id = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context, page reports.Page) ([]*models.User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, translate("count users", err)
	}

	query := `SELECT user_id, username, email, created_at
	          FROM users
	          ORDER BY user_id ASC
	          LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, translate("query users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt); err != nil {
			return nil, 0, translate("scan user", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("iterate users", err)
	}
	return users, total, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET username = $1, email = $2 WHERE user_id = $3`

	result, err := r.db.Exec(ctx, query, user.Username, user.Email, user.ID)
	if err != nil {
		return translate("update user", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user; projects, devices and tokens go with it through
// ON DELETE CASCADE.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return translate("delete user", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
