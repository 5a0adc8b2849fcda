package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
)

type PostgresDeviceLogRepository struct {
	db DBTX
}

func NewPostgresDeviceLogRepository(db DBTX) *PostgresDeviceLogRepository {
	return &PostgresDeviceLogRepository{db: db}
}

func (r *PostgresDeviceLogRepository) Create(ctx context.Context, log *models.DeviceLog) error {
	query := `INSERT INTO device_logs (project_id, instance_id, message, level, log_tag_id, actual_log_time)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING log_id, created_at`

	err := r.db.QueryRow(ctx, query,
		log.ProjectID,
		log.InstanceID,
		log.Message,
		log.Level,
		log.LogTagID,
		log.ActualLogTime,
	).Scan(&log.ID, &log.CreatedAt)
	return translate("create device log", err)
}

func (r *PostgresDeviceLogRepository) GetByID(ctx context.Context, projectID, logID int64) (*models.DeviceLog, error) {
	query := `SELECT dl.log_id, dl.project_id, dl.instance_id, dl.message, dl.level, dl.log_tag_id, lt.tag,
	                 dl.actual_log_time, dl.created_at
	          FROM device_logs dl
	          LEFT JOIN log_tags lt ON lt.id = dl.log_tag_id
	          WHERE dl.log_id = $1 AND dl.project_id = $2`

	var l models.DeviceLog
	err := r.db.QueryRow(ctx, query, logID, projectID).Scan(
		&l.ID,
		&l.ProjectID,
		&l.InstanceID,
		&l.Message,
		&l.Level,
		&l.LogTagID,
		&l.Tag,
		&l.ActualLogTime,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, translate("get device log", err)
	}
	return &l, nil
}

func (r *PostgresDeviceLogRepository) Update(ctx context.Context, log *models.DeviceLog) error {
	query := `UPDATE device_logs SET message = $1, level = $2 WHERE log_id = $3 AND project_id = $4`

	result, err := r.db.Exec(ctx, query, log.Message, log.Level, log.ID, log.ProjectID)
	if err != nil {
		return translate("update device log", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresDeviceLogRepository) Delete(ctx context.Context, projectID, logID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM device_logs WHERE log_id = $1 AND project_id = $2`, logID, projectID)
	if err != nil {
		return translate("delete device log", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
