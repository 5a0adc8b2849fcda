package services

import (
	"context"
	"strings"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type DeviceTagService struct {
	store repositories.Store
}

func NewDeviceTagService(store repositories.Store) *DeviceTagService {
	return &DeviceTagService{store: store}
}

func validateTag(tag models.DeviceTag) error {
	if strings.TrimSpace(tag.TagName) == "" {
		return NewValidationError("tag_name", "must not be empty")
	}
	if strings.TrimSpace(tag.TagValue) == "" {
		return NewValidationError("tag_value", "must not be empty")
	}
	return nil
}

// Create attaches a (name, value) pair to a device of the project.
func (s *DeviceTagService) Create(ctx context.Context, tag models.DeviceTag) (*models.DeviceTag, error) {
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if _, err := repos.Devices.GetByID(ctx, tag.ProjectID, tag.InstanceID); err != nil {
		return nil, err
	}
	if err := repos.Tags.Create(ctx, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *DeviceTagService) List(ctx context.Context, projectID int64, instanceID *int64, page reports.Page) (reports.List[*models.DeviceTag], error) {
	tags, total, err := s.store.Repos().Tags.List(ctx, projectID, instanceID, page)
	if err != nil {
		return reports.List[*models.DeviceTag]{}, err
	}

	filters := map[string]any{}
	if instanceID != nil {
		filters["instance_id"] = *instanceID
	}
	return reports.NewList(tags, page, total, filters), nil
}

func (s *DeviceTagService) Update(ctx context.Context, tag models.DeviceTag, newValue string) (*models.DeviceTag, error) {
	if strings.TrimSpace(newValue) == "" {
		return nil, NewValidationError("tag_value", "must not be empty")
	}
	if err := s.store.Repos().Tags.UpdateValue(ctx, tag, newValue); err != nil {
		return nil, err
	}
	tag.TagValue = newValue
	return &tag, nil
}

func (s *DeviceTagService) Delete(ctx context.Context, tag models.DeviceTag) error {
	return s.store.Repos().Tags.Delete(ctx, tag)
}
