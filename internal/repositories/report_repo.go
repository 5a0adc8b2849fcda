package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type PostgresReportRepository struct {
	db DBTX
}

func NewPostgresReportRepository(db DBTX) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

// listQuery runs the count and the page of a built query, scanning rows with
// scan.
func listQuery[T any](ctx context.Context, db DBTX, q reports.Query, op string, scan func(pgx.Rows) (T, error)) ([]T, int64, error) {
	var total int64
	if err := db.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return nil, 0, translate("count "+op, err)
	}

	rows, err := db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, 0, translate("query "+op, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, translate("scan "+op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("iterate "+op, err)
	}
	return items, total, nil
}

func (r *PostgresReportRepository) ListDevices(ctx context.Context, f reports.DeviceListFilter) ([]reports.DeviceAggregate, int64, error) {
	return listQuery(ctx, r.db, reports.DeviceListQuery(f), "devices", func(rows pgx.Rows) (reports.DeviceAggregate, error) {
		var d reports.DeviceAggregate
		err := rows.Scan(
			&d.InstanceID,
			&d.DeviceID,
			&d.Name,
			&d.Model,
			&d.Platform,
			&d.Country,
			&d.CreatedAt,
			&d.LastUpdated,
			&d.TotalLogs,
			&d.TotalSessions,
			&d.TotalActions,
		)
		return d, err
	})
}

func (r *PostgresReportRepository) ListLogs(ctx context.Context, f reports.LogListFilter) ([]models.DeviceLog, int64, error) {
	return listQuery(ctx, r.db, reports.LogListQuery(f), "device logs", func(rows pgx.Rows) (models.DeviceLog, error) {
		var l models.DeviceLog
		err := rows.Scan(
			&l.ID,
			&l.ProjectID,
			&l.InstanceID,
			&l.Message,
			&l.Level,
			&l.LogTagID,
			&l.Tag,
			&l.ActualLogTime,
			&l.CreatedAt,
		)
		return l, err
	})
}

func (r *PostgresReportRepository) ListActions(ctx context.Context, f reports.InstanceWindowFilter) ([]reports.ActionEntry, int64, error) {
	return listQuery(ctx, r.db, reports.ActionListQuery(f), "actions", func(rows pgx.Rows) (reports.ActionEntry, error) {
		var a reports.ActionEntry
		err := rows.Scan(&a.ActualLogTime, &a.Tag)
		return a, err
	})
}

func (r *PostgresReportRepository) ListSessions(ctx context.Context, f reports.InstanceWindowFilter) ([]reports.SessionEntry, int64, error) {
	return listQuery(ctx, r.db, reports.SessionListQuery(f), "sessions", func(rows pgx.Rows) (reports.SessionEntry, error) {
		var s reports.SessionEntry
		err := rows.Scan(&s.ActualLogTime)
		return s, err
	})
}

func (r *PostgresReportRepository) TagSummary(ctx context.Context, projectID int64, w reports.Window) ([]reports.TagCount, error) {
	rows, err := r.db.Query(ctx, reports.TagSummarySQL, projectID, w.Start, w.End)
	if err != nil {
		return nil, translate("query log tag summary", err)
	}
	defer rows.Close()

	var tags []reports.TagCount
	for rows.Next() {
		var t reports.TagCount
		if err := rows.Scan(&t.ID, &t.Tag, &t.Count); err != nil {
			return nil, translate("scan log tag summary", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate log tag summary", err)
	}
	return tags, nil
}

func (r *PostgresReportRepository) PlatformSummary(ctx context.Context, projectID int64, w reports.Window) ([]reports.PlatformCount, error) {
	platforms := make([]string, len(models.Platforms))
	for i, p := range models.Platforms {
		platforms[i] = string(p)
	}

	rows, err := r.db.Query(ctx, reports.PlatformSummarySQL, projectID, w.Start, w.End, platforms)
	if err != nil {
		return nil, translate("query platform summary", err)
	}
	defer rows.Close()

	var counts []reports.PlatformCount
	for rows.Next() {
		var c reports.PlatformCount
		if err := rows.Scan(&c.Platform, &c.DeviceCount, &c.LogCount); err != nil {
			return nil, translate("scan platform summary", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate platform summary", err)
	}
	return counts, nil
}
