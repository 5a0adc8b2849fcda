package reports

import (
	"fmt"
	"sort"
	"strings"
)

func errUnknownOrder(s string) error {
	valid := make([]string, 0, len(orderClauses))
	for o := range orderClauses {
		valid = append(valid, string(o))
	}
	sort.Strings(valid)
	return fmt.Errorf("unknown order %q, expected one of %s", s, strings.Join(valid, ", "))
}

// Query is a parameterised statement plus the statement counting its rows.
type Query struct {
	SQL      string
	CountSQL string
	Args     []any
	// CountArgs is a prefix of Args; limit and offset are never counted.
	CountArgs []any
}

type builder struct {
	args  []any
	where []string
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) and(cond string) {
	b.where = append(b.where, cond)
}

func (b *builder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.where, " AND ")
}

// DeviceListQuery aggregates logs and sessions per device in pre-grouped
// CTEs so the outer join never fans out. Only devices with a session in the
// window are returned. The count statement counts grouped rows, not joined
// rows, so it matches what the listing can page through.
func DeviceListQuery(f DeviceListFilter) Query {
	b := &builder{}
	project := b.arg(f.ProjectID)
	start := b.arg(f.Window.Start)
	end := b.arg(f.Window.End)

	b.and("d.project_id = " + project)
	if f.Platform != nil {
		b.and("d.platform = " + b.arg(string(*f.Platform)))
	}

	grouped := fmt.Sprintf(`WITH session_counts AS (
	SELECT ds.instance_id, COUNT(*) AS total_sessions
	FROM device_sessions ds
	JOIN devices sd ON sd.instance_id = ds.instance_id
	WHERE sd.project_id = %[1]s AND ds.actual_log_time >= %[2]s AND ds.actual_log_time < %[3]s
	GROUP BY ds.instance_id
), log_counts AS (
	SELECT dl.instance_id, COUNT(*) AS total_logs, COUNT(dl.log_tag_id) AS total_actions
	FROM device_logs dl
	WHERE dl.project_id = %[1]s AND dl.actual_log_time >= %[2]s AND dl.actual_log_time < %[3]s
	GROUP BY dl.instance_id
)
SELECT d.instance_id, d.device_id, d.name, d.model, d.platform, d.country, d.created_at, d.last_updated,
	COALESCE(lc.total_logs, 0) AS total_logs,
	sc.total_sessions AS total_sessions,
	COALESCE(lc.total_actions, 0) AS total_actions
FROM devices d
JOIN session_counts sc ON sc.instance_id = d.instance_id
LEFT JOIN log_counts lc ON lc.instance_id = d.instance_id
%[4]s`, project, start, end, b.whereClause())

	order := orderClauses[f.Order]
	if order == "" {
		order = orderClauses[OrderRecent]
	}

	countArgs := append([]any(nil), b.args...)
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (\n%s\n) AS grouped", grouped)

	limit := b.arg(f.Page.Limit())
	offset := b.arg(f.Page.Offset())
	listSQL := fmt.Sprintf("%s\nORDER BY %s, d.instance_id DESC\nLIMIT %s OFFSET %s", grouped, order, limit, offset)

	return Query{SQL: listSQL, CountSQL: countSQL, Args: b.args, CountArgs: countArgs}
}

// LogListQuery lists one device's logs newest first. Date bounds are whole
// calendar days; an inverted range simply matches nothing.
func LogListQuery(f LogListFilter) Query {
	b := &builder{}
	b.and("dl.project_id = " + b.arg(f.ProjectID))
	b.and("dl.instance_id = " + b.arg(f.InstanceID))
	if f.Level != nil {
		b.and("dl.level = " + b.arg(string(*f.Level)))
	}
	if f.TagID != nil {
		b.and("dl.log_tag_id = " + b.arg(*f.TagID))
	}
	from, until := DateRange(f.StartDate, f.EndDate)
	if from != nil {
		b.and("dl.actual_log_time >= " + b.arg(*from))
	}
	if until != nil {
		b.and("dl.actual_log_time < " + b.arg(*until))
	}

	where := b.whereClause()
	countArgs := append([]any(nil), b.args...)
	countSQL := "SELECT COUNT(*) FROM device_logs dl " + where

	limit := b.arg(f.Page.Limit())
	offset := b.arg(f.Page.Offset())
	listSQL := fmt.Sprintf(`SELECT dl.log_id, dl.project_id, dl.instance_id, dl.message, dl.level, dl.log_tag_id, lt.tag,
	dl.actual_log_time, dl.created_at
FROM device_logs dl
LEFT JOIN log_tags lt ON lt.id = dl.log_tag_id
%s
ORDER BY dl.actual_log_time DESC, dl.log_id DESC
LIMIT %s OFFSET %s`, where, limit, offset)

	return Query{SQL: listSQL, CountSQL: countSQL, Args: b.args, CountArgs: countArgs}
}

// ActionListQuery lists the tagged logs of one device inside the window.
func ActionListQuery(f InstanceWindowFilter) Query {
	b := &builder{}
	b.and("dl.project_id = " + b.arg(f.ProjectID))
	b.and("dl.instance_id = " + b.arg(f.InstanceID))
	b.and("dl.actual_log_time >= " + b.arg(f.Window.Start))
	b.and("dl.actual_log_time < " + b.arg(f.Window.End))

	from := "FROM device_logs dl\nJOIN log_tags lt ON lt.id = dl.log_tag_id\n" + b.whereClause()
	countArgs := append([]any(nil), b.args...)
	countSQL := "SELECT COUNT(*) " + from

	limit := b.arg(f.Page.Limit())
	offset := b.arg(f.Page.Offset())
	listSQL := fmt.Sprintf("SELECT dl.actual_log_time, lt.tag\n%s\nORDER BY dl.actual_log_time DESC, dl.log_id DESC\nLIMIT %s OFFSET %s",
		from, limit, offset)

	return Query{SQL: listSQL, CountSQL: countSQL, Args: b.args, CountArgs: countArgs}
}

// SessionListQuery lists one device's sessions inside the window. The device
// join keeps the listing inside the caller's project.
func SessionListQuery(f InstanceWindowFilter) Query {
	b := &builder{}
	b.and("d.project_id = " + b.arg(f.ProjectID))
	b.and("ds.instance_id = " + b.arg(f.InstanceID))
	b.and("ds.actual_log_time >= " + b.arg(f.Window.Start))
	b.and("ds.actual_log_time < " + b.arg(f.Window.End))

	from := "FROM device_sessions ds\nJOIN devices d ON d.instance_id = ds.instance_id\n" + b.whereClause()
	countArgs := append([]any(nil), b.args...)
	countSQL := "SELECT COUNT(*) " + from

	limit := b.arg(f.Page.Limit())
	offset := b.arg(f.Page.Offset())
	listSQL := fmt.Sprintf("SELECT ds.actual_log_time\n%s\nORDER BY ds.actual_log_time DESC, ds.id DESC\nLIMIT %s OFFSET %s",
		from, limit, offset)

	return Query{SQL: listSQL, CountSQL: countSQL, Args: b.args, CountArgs: countArgs}
}

// TagSummarySQL counts every project tag's logs in the window; the outer join
// keeps tags without logs at zero.
const TagSummarySQL = `SELECT lt.id, lt.tag, COUNT(dl.log_id) AS total_count
FROM log_tags lt
LEFT JOIN device_logs dl
	ON dl.log_tag_id = lt.id
	AND dl.actual_log_time >= $2
	AND dl.actual_log_time < $3
WHERE lt.project_id = $1
GROUP BY lt.id, lt.tag
ORDER BY lt.tag ASC`

// PlatformSummarySQL counts devices by last activity and logs by occurrence
// time per platform. Platforms with no rows are filled in by
// FillPlatformSummary.
const PlatformSummarySQL = `SELECT p.platform,
	COALESCE(dc.device_count, 0) AS device_count,
	COALESCE(lc.log_count, 0) AS log_count
FROM unnest($4::text[]) AS p(platform)
LEFT JOIN (
	SELECT platform, COUNT(*) AS device_count
	FROM devices
	WHERE project_id = $1 AND last_updated >= $2 AND last_updated < $3
	GROUP BY platform
) dc ON dc.platform = p.platform
LEFT JOIN (
	SELECT d.platform, COUNT(*) AS log_count
	FROM device_logs dl
	JOIN devices d ON d.instance_id = dl.instance_id
	WHERE dl.project_id = $1 AND dl.actual_log_time >= $2 AND dl.actual_log_time < $3
	GROUP BY d.platform
) lc ON lc.platform = p.platform
ORDER BY p.platform ASC`
