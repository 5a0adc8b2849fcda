package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
)

// PostgresDeviceSessionRepository appends device heartbeats. Rows are never
// merged or capped.
type PostgresDeviceSessionRepository struct {
	db DBTX
}

func NewPostgresDeviceSessionRepository(db DBTX) *PostgresDeviceSessionRepository {
	return &PostgresDeviceSessionRepository{db: db}
}

func (r *PostgresDeviceSessionRepository) Append(ctx context.Context, session *models.DeviceSession) error {
	query := `INSERT INTO device_sessions (instance_id, actual_log_time)
	          VALUES ($1, $2)
	          RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, session.InstanceID, session.ActualLogTime).
		Scan(&session.ID, &session.CreatedAt)
	return translate("append device session", err)
}
