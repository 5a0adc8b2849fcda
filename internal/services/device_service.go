package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cdr.dev/slog/v3"

	"github.com/prudhvinik1/devicetrack/internal/metrics"
	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type DeviceService struct {
	store   repositories.Store
	logger  slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDeviceService(store repositories.Store, logger slog.Logger, m *metrics.Metrics) *DeviceService {
	return &DeviceService{
		store:   store,
		logger:  logger.Named("devices"),
		metrics: m,
		now:     time.Now,
	}
}

// DeviceInit is one device start-up report. Patch fields left unset keep
// their stored values.
type DeviceInit struct {
	InstanceID    int64
	Patch         models.DevicePatch
	ActualLogTime *time.Time
}

func validatePatch(p models.DevicePatch) error {
	if p.Platform.Set && p.Platform.Valid {
		if _, err := models.ParsePlatform(string(p.Platform.Value)); err != nil {
			return NewValidationError("platform", err.Error())
		}
	}
	return nil
}

// Init upserts the device and records one session, both in a single
// transaction. The device row is locked for the duration so concurrent inits
// of the same instance serialize. A device registered under another project
// is reported as not found.
func (s *DeviceService) Init(ctx context.Context, projectID int64, in DeviceInit) (*models.Device, error) {
	if err := validatePatch(in.Patch); err != nil {
		return nil, err
	}

	occurred := s.now().UTC()
	if in.ActualLogTime != nil {
		occurred = in.ActualLogTime.UTC()
	}

	var device *models.Device
	err := s.store.InTx(ctx, func(repos repositories.Repositories) error {
		existing, err := repos.Devices.GetForUpdate(ctx, in.InstanceID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		if existing == nil {
			d := &models.Device{InstanceID: in.InstanceID, ProjectID: projectID, LastUpdated: in.ActualLogTime}
			in.Patch.ApplyTo(d)
			created, err := repos.Devices.CreateIfAbsent(ctx, d)
			if err != nil {
				return err
			}
			if created {
				device = d
			} else {
				// Lost an insert race; the winner's row is now visible.
				if existing, err = repos.Devices.GetForUpdate(ctx, in.InstanceID); err != nil {
					return err
				}
			}
		}

		if existing != nil {
			if existing.ProjectID != projectID {
				return repositories.ErrNotFound
			}
			in.Patch.ApplyTo(existing)
			if in.ActualLogTime != nil {
				t := in.ActualLogTime.UTC()
				existing.LastUpdated = &t
			}
			if err := repos.Devices.Update(ctx, existing); err != nil {
				return err
			}
			device = existing
		}

		return repos.Sessions.Append(ctx, &models.DeviceSession{
			InstanceID:    in.InstanceID,
			ActualLogTime: occurred,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DeviceInits.Inc()
	s.logger.Debug(ctx, "device init",
		slog.F("project_id", projectID),
		slog.F("instance_id", in.InstanceID),
	)
	return device, nil
}

// Create registers a new device without recording a session.
func (s *DeviceService) Create(ctx context.Context, projectID, instanceID int64, patch models.DevicePatch, lastUpdated *time.Time) (*models.Device, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	d := &models.Device{InstanceID: instanceID, ProjectID: projectID, LastUpdated: lastUpdated}
	patch.ApplyTo(d)
	if err := s.store.Repos().Devices.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeviceService) Get(ctx context.Context, projectID, instanceID int64) (*models.Device, error) {
	return s.store.Repos().Devices.GetByID(ctx, projectID, instanceID)
}

func (s *DeviceService) Update(ctx context.Context, projectID, instanceID int64, patch models.DevicePatch) (*models.Device, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var device *models.Device
	err := s.store.InTx(ctx, func(repos repositories.Repositories) error {
		d, err := repos.Devices.GetByID(ctx, projectID, instanceID)
		if err != nil {
			return err
		}
		patch.ApplyTo(d)
		if err := repos.Devices.Update(ctx, d); err != nil {
			return err
		}
		device = d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	return device, nil
}

// Delete removes the device with its logs, tags and sessions.
func (s *DeviceService) Delete(ctx context.Context, projectID, instanceID int64) error {
	return s.store.Repos().Devices.Delete(ctx, projectID, instanceID)
}
