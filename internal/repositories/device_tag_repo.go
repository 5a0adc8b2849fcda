package repositories

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type PostgresDeviceTagRepository struct {
	db DBTX
}

func NewPostgresDeviceTagRepository(db DBTX) *PostgresDeviceTagRepository {
	return &PostgresDeviceTagRepository{db: db}
}

// Create fails with ErrDuplicate when the device already carries the same
// (name, value) pair.
func (r *PostgresDeviceTagRepository) Create(ctx context.Context, tag *models.DeviceTag) error {
	query := `INSERT INTO device_tags (instance_id, tag_name, tag_value, project_id) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, tag.InstanceID, tag.TagName, tag.TagValue, tag.ProjectID)
	return translate("create device tag", err)
}

func (r *PostgresDeviceTagRepository) List(ctx context.Context, projectID int64, instanceID *int64, page reports.Page) ([]*models.DeviceTag, int64, error) {
	filter := `WHERE project_id = $1 AND ($2::bigint IS NULL OR instance_id = $2)`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM device_tags `+filter, projectID, instanceID).Scan(&total); err != nil {
		return nil, 0, translate("count device tags", err)
	}

	query := `SELECT instance_id, tag_name, tag_value, project_id
	          FROM device_tags ` + filter + `
	          ORDER BY instance_id ASC, tag_name ASC, tag_value ASC
	          LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, projectID, instanceID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, translate("query device tags", err)
	}
	defer rows.Close()

	var tags []*models.DeviceTag
	for rows.Next() {
		var t models.DeviceTag
		if err := rows.Scan(&t.InstanceID, &t.TagName, &t.TagValue, &t.ProjectID); err != nil {
			return nil, 0, translate("scan device tag", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("iterate device tags", err)
	}
	return tags, total, nil
}

// UpdateValue replaces the value of one (name, value) pair on a device.
func (r *PostgresDeviceTagRepository) UpdateValue(ctx context.Context, tag models.DeviceTag, newValue string) error {
	query := `UPDATE device_tags SET tag_value = $1
	          WHERE instance_id = $2 AND tag_name = $3 AND tag_value = $4 AND project_id = $5`

	result, err := r.db.Exec(ctx, query, newValue, tag.InstanceID, tag.TagName, tag.TagValue, tag.ProjectID)
	if err != nil {
		return translate("update device tag", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresDeviceTagRepository) Delete(ctx context.Context, tag models.DeviceTag) error {
	query := `DELETE FROM device_tags
	          WHERE instance_id = $1 AND tag_name = $2 AND tag_value = $3 AND project_id = $4`

	result, err := r.db.Exec(ctx, query, tag.InstanceID, tag.TagName, tag.TagValue, tag.ProjectID)
	if err != nil {
		return translate("delete device tag", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
