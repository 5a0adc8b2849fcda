package services

import (
	"context"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

// ReportService shapes the read side: windowed, paginated listings and
// summaries, always scoped to one project.
type ReportService struct {
	reports repositories.ReportRepository
}

func NewReportService(store repositories.Store) *ReportService {
	return &ReportService{reports: store.Repos().Reports}
}

func (s *ReportService) Devices(ctx context.Context, f reports.DeviceListFilter) (reports.List[reports.DeviceAggregate], error) {
	if f.Order == "" {
		f.Order = reports.OrderRecent
	}
	items, total, err := s.reports.ListDevices(ctx, f)
	if err != nil {
		return reports.List[reports.DeviceAggregate]{}, err
	}

	filters := reports.WindowFilters(f.Window)
	filters["order"] = string(f.Order)
	if f.Platform != nil {
		filters["platform"] = string(*f.Platform)
	}
	return reports.NewList(items, f.Page, total, filters), nil
}

// Logs lists one device's logs. An inverted date range yields an empty page.
func (s *ReportService) Logs(ctx context.Context, f reports.LogListFilter) (reports.List[models.DeviceLog], error) {
	filters := map[string]any{"instance_id": f.InstanceID}
	if f.Level != nil {
		filters["level"] = string(*f.Level)
	}
	if f.TagID != nil {
		filters["tag_id"] = *f.TagID
	}
	if f.StartDate != nil {
		filters["start_date"] = reports.FormatDate(*f.StartDate)
	}
	if f.EndDate != nil {
		filters["end_date"] = reports.FormatDate(*f.EndDate)
	}

	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return reports.NewList[models.DeviceLog](nil, f.Page, 0, filters), nil
	}

	items, total, err := s.reports.ListLogs(ctx, f)
	if err != nil {
		return reports.List[models.DeviceLog]{}, err
	}
	return reports.NewList(items, f.Page, total, filters), nil
}

func (s *ReportService) Actions(ctx context.Context, f reports.InstanceWindowFilter) (reports.List[reports.ActionEntry], error) {
	items, total, err := s.reports.ListActions(ctx, f)
	if err != nil {
		return reports.List[reports.ActionEntry]{}, err
	}
	return reports.NewList(items, f.Page, total, instanceWindowFilters(f)), nil
}

func (s *ReportService) Sessions(ctx context.Context, f reports.InstanceWindowFilter) (reports.List[reports.SessionEntry], error) {
	items, total, err := s.reports.ListSessions(ctx, f)
	if err != nil {
		return reports.List[reports.SessionEntry]{}, err
	}
	return reports.NewList(items, f.Page, total, instanceWindowFilters(f)), nil
}

func instanceWindowFilters(f reports.InstanceWindowFilter) map[string]any {
	filters := reports.WindowFilters(f.Window)
	filters["instance_id"] = f.InstanceID
	return filters
}

func (s *ReportService) TagSummary(ctx context.Context, projectID int64, w reports.Window) (reports.TagSummary, error) {
	tags, err := s.reports.TagSummary(ctx, projectID, w)
	if err != nil {
		return reports.TagSummary{}, err
	}
	return reports.NewTagSummary(projectID, w, tags), nil
}

func (s *ReportService) PlatformSummary(ctx context.Context, projectID int64, w reports.Window) (reports.PlatformSummary, error) {
	rows, err := s.reports.PlatformSummary(ctx, projectID, w)
	if err != nil {
		return reports.PlatformSummary{}, err
	}
	return reports.NewPlatformSummary(projectID, w, rows), nil
}
