package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/prudhvinik1/devicetrack/internal/models"
)

const deviceColumns = `instance_id, device_id, project_id, name, model, platform, country, created_at, last_updated`

type PostgresDeviceRepository struct {
	db DBTX
}

func NewPostgresDeviceRepository(db DBTX) *PostgresDeviceRepository {
	return &PostgresDeviceRepository{db: db}
}

func scanDevice(row pgx.Row) (*models.Device, error) {
	var d models.Device
	err := row.Scan(
		&d.InstanceID,
		&d.DeviceID,
		&d.ProjectID,
		&d.Name,
		&d.Model,
		&d.Platform,
		&d.Country,
		&d.CreatedAt,
		&d.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new device and fails with ErrDuplicate when the instance
// id is taken.
func (r *PostgresDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `INSERT INTO devices (instance_id, device_id, project_id, name, model, platform, country, last_updated)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		device.InstanceID,
		device.DeviceID,
		device.ProjectID,
		device.Name,
		device.Model,
		device.Platform,
		device.Country,
		device.LastUpdated,
	).Scan(&device.CreatedAt)
	return translate("create device", err)
}

// CreateIfAbsent inserts the device unless the instance id already exists.
// It reports whether this call inserted the row.
func (r *PostgresDeviceRepository) CreateIfAbsent(ctx context.Context, device *models.Device) (bool, error) {
	query := `INSERT INTO devices (instance_id, device_id, project_id, name, model, platform, country, last_updated)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (instance_id) DO NOTHING
	          RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		device.InstanceID,
		device.DeviceID,
		device.ProjectID,
		device.Name,
		device.Model,
		device.Platform,
		device.Country,
		device.LastUpdated,
	).Scan(&device.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translate("create device", err)
	}
	return true, nil
}

// GetForUpdate loads a device and locks its row until the surrounding
// transaction ends. It does not filter by project.
func (r *PostgresDeviceRepository) GetForUpdate(ctx context.Context, instanceID int64) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE instance_id = $1 FOR UPDATE`

	device, err := scanDevice(r.db.QueryRow(ctx, query, instanceID))
	if err != nil {
		return nil, translate("get device", err)
	}
	return device, nil
}

func (r *PostgresDeviceRepository) GetByID(ctx context.Context, projectID, instanceID int64) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE instance_id = $1 AND project_id = $2`

	device, err := scanDevice(r.db.QueryRow(ctx, query, instanceID, projectID))
	if err != nil {
		return nil, translate("get device", err)
	}
	return device, nil
}

func (r *PostgresDeviceRepository) Update(ctx context.Context, device *models.Device) error {
	query := `UPDATE devices
	          SET device_id = $1, name = $2, model = $3, platform = $4, country = $5, last_updated = $6
	          WHERE instance_id = $7 AND project_id = $8`

	result, err := r.db.Exec(ctx, query,
		device.DeviceID,
		device.Name,
		device.Model,
		device.Platform,
		device.Country,
		device.LastUpdated,
		device.InstanceID,
		device.ProjectID,
	)
	if err != nil {
		return translate("update device", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresDeviceRepository) Delete(ctx context.Context, projectID, instanceID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM devices WHERE instance_id = $1 AND project_id = $2`, instanceID, projectID)
	if err != nil {
		return translate("delete device", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
