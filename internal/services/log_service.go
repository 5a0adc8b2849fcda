package services

import (
	"context"
	"strings"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type LogService struct {
	store repositories.Store
	now   func() time.Time
}

func NewLogService(store repositories.Store) *LogService {
	return &LogService{store: store, now: time.Now}
}

type CreateLogRequest struct {
	InstanceID    int64
	Message       string
	Level         models.LogLevel
	Tag           *string
	ActualLogTime *time.Time
}

type LogPatch struct {
	Message *string
	Level   *models.LogLevel
}

// Create records a log for a device of the project. The device must belong
// to projectID; the tag, if any, is created on first use.
func (s *LogService) Create(ctx context.Context, projectID int64, req CreateLogRequest) (*models.DeviceLog, error) {
	if _, err := models.ParseLogLevel(string(req.Level)); err != nil {
		return nil, NewValidationError("level", "must be INFO, WARNING or ERROR")
	}

	occurred := s.now().UTC()
	if req.ActualLogTime != nil {
		occurred = req.ActualLogTime.UTC()
	}

	var created *models.DeviceLog
	err := s.store.InTx(ctx, func(repos repositories.Repositories) error {
		if _, err := repos.Devices.GetByID(ctx, projectID, req.InstanceID); err != nil {
			return err
		}

		log := &models.DeviceLog{
			ProjectID:     projectID,
			InstanceID:    req.InstanceID,
			Message:       req.Message,
			Level:         req.Level,
			ActualLogTime: occurred,
		}
		if req.Tag != nil {
			if tag := strings.TrimSpace(*req.Tag); tag != "" {
				lt, err := repos.LogTags.GetOrCreate(ctx, projectID, tag)
				if err != nil {
					return err
				}
				log.LogTagID = &lt.ID
				log.Tag = &lt.Tag
			}
		}

		if err := repos.Logs.Create(ctx, log); err != nil {
			return err
		}
		created = log
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *LogService) Update(ctx context.Context, projectID, logID int64, patch LogPatch) (*models.DeviceLog, error) {
	if patch.Level != nil {
		if _, err := models.ParseLogLevel(string(*patch.Level)); err != nil {
			return nil, NewValidationError("level", "must be INFO, WARNING or ERROR")
		}
	}

	repos := s.store.Repos()
	log, err := repos.Logs.GetByID(ctx, projectID, logID)
	if err != nil {
		return nil, err
	}
	if patch.Message != nil {
		log.Message = *patch.Message
	}
	if patch.Level != nil {
		log.Level = *patch.Level
	}
	if err := repos.Logs.Update(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *LogService) Delete(ctx context.Context, projectID, logID int64) error {
	return s.store.Repos().Logs.Delete(ctx, projectID, logID)
}
