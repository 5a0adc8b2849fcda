package reports

import (
	"sort"

	"github.com/prudhvinik1/devicetrack/internal/models"
)

// FillPlatformSummary returns exactly one entry per platform, zero-filled and
// sorted by platform name.
func FillPlatformSummary(rows []PlatformCount) []PlatformCount {
	byPlatform := make(map[models.Platform]PlatformCount, len(rows))
	for _, r := range rows {
		acc := byPlatform[r.Platform]
		acc.DeviceCount += r.DeviceCount
		acc.LogCount += r.LogCount
		byPlatform[r.Platform] = acc
	}

	out := make([]PlatformCount, 0, len(models.Platforms))
	for _, p := range models.Platforms {
		c := byPlatform[p]
		out = append(out, PlatformCount{Platform: p, DeviceCount: c.DeviceCount, LogCount: c.LogCount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

// SortTagCounts orders tags by name, then id for equal names.
func SortTagCounts(tags []TagCount) []TagCount {
	if tags == nil {
		return []TagCount{}
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Tag == tags[j].Tag {
			return tags[i].ID < tags[j].ID
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags
}

// WindowFilters echoes a window the way list responses report it.
func WindowFilters(w Window) map[string]any {
	return map[string]any{
		"start": FormatInstant(w.Start),
		"end":   FormatInstant(w.End),
	}
}

type TagSummary struct {
	ProjectID int64      `json:"project_id"`
	Start     string     `json:"start"`
	End       string     `json:"end"`
	Tags      []TagCount `json:"tags"`
}

type PlatformSummary struct {
	ProjectID int64           `json:"project_id"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Platforms []PlatformCount `json:"platforms"`
}

func NewTagSummary(projectID int64, w Window, tags []TagCount) TagSummary {
	return TagSummary{
		ProjectID: projectID,
		Start:     FormatInstant(w.Start),
		End:       FormatInstant(w.End),
		Tags:      SortTagCounts(tags),
	}
}

func NewPlatformSummary(projectID int64, w Window, rows []PlatformCount) PlatformSummary {
	return PlatformSummary{
		ProjectID: projectID,
		Start:     FormatInstant(w.Start),
		End:       FormatInstant(w.End),
		Platforms: FillPlatformSummary(rows),
	}
}
