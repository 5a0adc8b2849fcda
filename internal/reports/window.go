package reports

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Window is a half-open [Start, End) interval in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Today returns the UTC calendar day containing now.
func Today(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ResolveWindow uses the explicit bounds only when both are given, otherwise
// it falls back to today.
func ResolveWindow(start, end *time.Time, now time.Time) Window {
	if start == nil || end == nil {
		return Today(now)
	}
	return Window{Start: start.UTC(), End: end.UTC()}
}

// ParseInstant accepts RFC 3339 with a Z or numeric offset. Timestamps
// without any zone are read as UTC.
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q, use ISO 8601 UTC e.g. 2025-11-12T00:00:00Z", s)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatInstant renders t as RFC 3339 UTC with a Z suffix.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// DateRange turns calendar-day bounds into instants. The end day is
// inclusive, so its bound moves to the following midnight.
func DateRange(startDate, endDate *time.Time) (from, until *time.Time) {
	if startDate != nil {
		s := startDate.UTC()
		from = &s
	}
	if endDate != nil {
		e := endDate.UTC().AddDate(0, 0, 1)
		until = &e
	}
	return from, until
}
