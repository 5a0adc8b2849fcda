package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type reportRepo struct{ s *Store }

func inWindow(t time.Time, w reports.Window) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (r *reportRepo) ListDevices(_ context.Context, f reports.DeviceListFilter) ([]reports.DeviceAggregate, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	sessions := map[int64]int64{}
	for _, s := range d.sessions {
		if inWindow(s.ActualLogTime, f.Window) {
			sessions[s.InstanceID]++
		}
	}
	logs, actions := map[int64]int64{}, map[int64]int64{}
	for _, l := range d.logs {
		if l.ProjectID != f.ProjectID || !inWindow(l.ActualLogTime, f.Window) {
			continue
		}
		logs[l.InstanceID]++
		if l.LogTagID != nil {
			actions[l.InstanceID]++
		}
	}

	var all []reports.DeviceAggregate
	for _, dev := range d.devices {
		if dev.ProjectID != f.ProjectID || sessions[dev.InstanceID] == 0 {
			continue
		}
		if f.Platform != nil && (dev.Platform == nil || *dev.Platform != *f.Platform) {
			continue
		}
		all = append(all, reports.DeviceAggregate{
			InstanceID:    dev.InstanceID,
			DeviceID:      dev.DeviceID,
			Name:          dev.Name,
			Model:         dev.Model,
			Platform:      dev.Platform,
			Country:       dev.Country,
			CreatedAt:     dev.CreatedAt,
			LastUpdated:   dev.LastUpdated,
			TotalLogs:     logs[dev.InstanceID],
			TotalSessions: sessions[dev.InstanceID],
			TotalActions:  actions[dev.InstanceID],
		})
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if c := compareAggregates(f.Order, a, b); c != 0 {
			return c < 0
		}
		return a.InstanceID > b.InstanceID
	})
	return paginate(all, f.Page), int64(len(all)), nil
}

// compareAggregates orders a before b when negative.
func compareAggregates(order reports.DeviceOrder, a, b reports.DeviceAggregate) int {
	cmp := func(x, y int64) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch order {
	case reports.OrderLogsAsc:
		return cmp(a.TotalLogs, b.TotalLogs)
	case reports.OrderLogsDesc:
		return -cmp(a.TotalLogs, b.TotalLogs)
	case reports.OrderSessionsAsc:
		return cmp(a.TotalSessions, b.TotalSessions)
	case reports.OrderSessionsDesc:
		return -cmp(a.TotalSessions, b.TotalSessions)
	case reports.OrderActionsAsc:
		return cmp(a.TotalActions, b.TotalActions)
	case reports.OrderActionsDesc:
		return -cmp(a.TotalActions, b.TotalActions)
	}
	// recent: newest last_updated first, nulls last
	switch {
	case a.LastUpdated == nil && b.LastUpdated == nil:
		return 0
	case a.LastUpdated == nil:
		return 1
	case b.LastUpdated == nil:
		return -1
	}
	return -cmp(a.LastUpdated.UnixNano(), b.LastUpdated.UnixNano())
}

func (r *reportRepo) ListLogs(_ context.Context, f reports.LogListFilter) ([]models.DeviceLog, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	from, until := reports.DateRange(f.StartDate, f.EndDate)
	var all []models.DeviceLog
	for _, l := range d.logs {
		if l.ProjectID != f.ProjectID || l.InstanceID != f.InstanceID {
			continue
		}
		if f.Level != nil && l.Level != *f.Level {
			continue
		}
		if f.TagID != nil && (l.LogTagID == nil || *l.LogTagID != *f.TagID) {
			continue
		}
		if from != nil && l.ActualLogTime.Before(*from) {
			continue
		}
		if until != nil && !l.ActualLogTime.Before(*until) {
			continue
		}
		all = append(all, withTag(d, l))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ActualLogTime.Equal(all[j].ActualLogTime) {
			return all[i].ActualLogTime.After(all[j].ActualLogTime)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, f.Page), int64(len(all)), nil
}

func (r *reportRepo) ListActions(_ context.Context, f reports.InstanceWindowFilter) ([]reports.ActionEntry, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	var tagged []models.DeviceLog
	for _, l := range d.logs {
		if l.ProjectID != f.ProjectID || l.InstanceID != f.InstanceID || l.LogTagID == nil {
			continue
		}
		if _, ok := d.logTags[*l.LogTagID]; !ok || !inWindow(l.ActualLogTime, f.Window) {
			continue
		}
		tagged = append(tagged, withTag(d, l))
	}
	sort.Slice(tagged, func(i, j int) bool {
		if !tagged[i].ActualLogTime.Equal(tagged[j].ActualLogTime) {
			return tagged[i].ActualLogTime.After(tagged[j].ActualLogTime)
		}
		return tagged[i].ID > tagged[j].ID
	})

	all := make([]reports.ActionEntry, len(tagged))
	for i, l := range tagged {
		all[i] = reports.ActionEntry{ActualLogTime: l.ActualLogTime, Tag: *l.Tag}
	}
	return paginate(all, f.Page), int64(len(all)), nil
}

func (r *reportRepo) ListSessions(_ context.Context, f reports.InstanceWindowFilter) ([]reports.SessionEntry, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	dev, ok := d.devices[f.InstanceID]
	if !ok || dev.ProjectID != f.ProjectID {
		return nil, 0, nil
	}

	var matched []models.DeviceSession
	for _, s := range d.sessions {
		if s.InstanceID == f.InstanceID && inWindow(s.ActualLogTime, f.Window) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ActualLogTime.Equal(matched[j].ActualLogTime) {
			return matched[i].ActualLogTime.After(matched[j].ActualLogTime)
		}
		return matched[i].ID > matched[j].ID
	})

	all := make([]reports.SessionEntry, len(matched))
	for i, s := range matched {
		all[i] = reports.SessionEntry{ActualLogTime: s.ActualLogTime}
	}
	return paginate(all, f.Page), int64(len(all)), nil
}

func (r *reportRepo) TagSummary(_ context.Context, projectID int64, w reports.Window) ([]reports.TagCount, error) {
	d := r.s.lock()
	defer r.s.unlock()

	counts := map[int64]int64{}
	for _, l := range d.logs {
		if l.LogTagID != nil && inWindow(l.ActualLogTime, w) {
			counts[*l.LogTagID]++
		}
	}

	var tags []reports.TagCount
	for _, lt := range d.logTags {
		if lt.ProjectID == projectID {
			tags = append(tags, reports.TagCount{ID: lt.ID, Tag: lt.Tag, Count: counts[lt.ID]})
		}
	}
	return reports.SortTagCounts(tags), nil
}

func (r *reportRepo) PlatformSummary(_ context.Context, projectID int64, w reports.Window) ([]reports.PlatformCount, error) {
	d := r.s.lock()
	defer r.s.unlock()

	devices := map[models.Platform]int64{}
	for _, dev := range d.devices {
		if dev.ProjectID != projectID || dev.Platform == nil || dev.LastUpdated == nil {
			continue
		}
		if inWindow(*dev.LastUpdated, w) {
			devices[*dev.Platform]++
		}
	}
	logs := map[models.Platform]int64{}
	for _, l := range d.logs {
		if l.ProjectID != projectID || !inWindow(l.ActualLogTime, w) {
			continue
		}
		if dev, ok := d.devices[l.InstanceID]; ok && dev.Platform != nil {
			logs[*dev.Platform]++
		}
	}

	out := make([]reports.PlatformCount, 0, len(models.Platforms))
	for _, p := range models.Platforms {
		out = append(out, reports.PlatformCount{Platform: p, DeviceCount: devices[p], LogCount: logs[p]})
	}
	return out, nil
}
