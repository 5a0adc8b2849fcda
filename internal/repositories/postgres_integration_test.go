//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/prudhvinik1/devicetrack/internal/database"
	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

// getTestPool starts a throwaway Postgres, applies the migrations and
// returns a pool onto it.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("devicetrack_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(dsn))

	logger := slogtest.Make(t, nil)
	pool, err := database.NewPostgresPool(ctx, logger, dsn, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createTestProject(t *testing.T, repos Repositories, username, name string) *models.Project {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Username: username}
	require.NoError(t, repos.Users.Create(ctx, user))
	project := &models.Project{UserID: user.ID, Name: name}
	require.NoError(t, repos.Projects.Create(ctx, project))
	return project
}

func TestPostgres(t *testing.T) {
	pool := getTestPool(t)
	store := NewPostgresStore(pool)
	repos := store.Repos()
	ctx := context.Background()

	alice := createTestProject(t, repos, "alice", "Demo")
	bob := createTestProject(t, repos, "bob", "Demo")

	t.Run("ProjectNameUniquePerUser", func(t *testing.T) {
		err := repos.Projects.Create(ctx, &models.Project{UserID: alice.UserID, Name: "Demo"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("DeviceListCountsGroupedRows", func(t *testing.T) {
		// ARRANGE
		now := time.Now().UTC()
		platform := models.PlatformAndroid
		device := &models.Device{InstanceID: 1001, ProjectID: alice.ID, Platform: &platform, LastUpdated: &now}
		require.NoError(t, repos.Devices.Create(ctx, device))
		for i := 0; i < 3; i++ {
			require.NoError(t, repos.Sessions.Append(ctx, &models.DeviceSession{InstanceID: 1001, ActualLogTime: now}))
		}
		tag, err := repos.LogTags.GetOrCreate(ctx, alice.ID, "app_open")
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			require.NoError(t, repos.Logs.Create(ctx, &models.DeviceLog{
				ProjectID: alice.ID, InstanceID: 1001, Message: "m", Level: models.LogLevelInfo,
				LogTagID: &tag.ID, ActualLogTime: now,
			}))
		}

		// ACT
		items, total, err := repos.Reports.ListDevices(ctx, reports.DeviceListFilter{
			ProjectID: alice.ID,
			Window:    reports.Today(now),
			Order:     reports.OrderRecent,
			Page:      reports.DefaultPage(),
		})

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, int64(3), items[0].TotalSessions)
		assert.Equal(t, int64(2), items[0].TotalLogs)
		assert.Equal(t, int64(2), items[0].TotalActions)
	})

	t.Run("DevicesAreProjectScoped", func(t *testing.T) {
		_, err := repos.Devices.GetByID(ctx, bob.ID, 1001)
		assert.ErrorIs(t, err, ErrNotFound)

		items, total, err := repos.Reports.ListDevices(ctx, reports.DeviceListFilter{
			ProjectID: bob.ID,
			Window:    reports.Today(time.Now()),
			Page:      reports.DefaultPage(),
		})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})

	t.Run("InvertedDateRangeMatchesNothing", func(t *testing.T) {
		start := time.Now().UTC().AddDate(0, 0, 5)
		end := time.Now().UTC().AddDate(0, 0, -5)

		items, total, err := repos.Reports.ListLogs(ctx, reports.LogListFilter{
			ProjectID: alice.ID, InstanceID: 1001, StartDate: &start, EndDate: &end, Page: reports.DefaultPage(),
		})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})

	t.Run("PlatformSummaryListsEveryPlatform", func(t *testing.T) {
		rows, err := repos.Reports.PlatformSummary(ctx, alice.ID, reports.Today(time.Now()))

		require.NoError(t, err)
		require.Len(t, rows, len(models.Platforms))
		for _, r := range rows {
			if r.Platform == models.PlatformAndroid {
				assert.Equal(t, int64(1), r.DeviceCount)
				assert.Equal(t, int64(2), r.LogCount)
			}
		}
	})

	t.Run("ReportQueries", func(t *testing.T) {
		testReportQueries(t, repos, createTestProject(t, repos, "carol", "Fleet"), bob)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		err := store.InTx(ctx, func(tx Repositories) error {
			if err := tx.Devices.Create(ctx, &models.Device{InstanceID: 2002, ProjectID: alice.ID}); err != nil {
				return err
			}
			return tx.Devices.Create(ctx, &models.Device{InstanceID: 1001, ProjectID: alice.ID})
		})

		require.ErrorIs(t, err, ErrDuplicate)
		_, err = repos.Devices.GetByID(ctx, alice.ID, 2002)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// reportDevice describes one seeded device; every session and log is placed
// inside reportWindow unless noted.
type reportDevice struct {
	instanceID  int64
	platform    models.Platform
	lastUpdated *time.Duration
	sessions    int
	tags        []string // one log per entry, "" for an untagged log
}

var reportWindow = reports.Window{
	Start: time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 11, 13, 0, 0, 0, 0, time.UTC),
}

func hours(n int) *time.Duration {
	d := time.Duration(n) * time.Hour
	return &d
}

func seedReportDevices(t *testing.T, repos Repositories, projectID int64, devices []reportDevice) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	tagIDs := map[string]int64{}
	tagID := func(name string) *int64 {
		if name == "" {
			return nil
		}
		if _, ok := tagIDs[name]; !ok {
			tag, err := repos.LogTags.GetOrCreate(ctx, projectID, name)
			require.NoError(t, err)
			tagIDs[name] = tag.ID
		}
		id := tagIDs[name]
		return &id
	}

	for _, dev := range devices {
		platform := dev.platform
		device := &models.Device{InstanceID: dev.instanceID, ProjectID: projectID, Platform: &platform}
		if dev.lastUpdated != nil {
			at := reportWindow.Start.Add(*dev.lastUpdated)
			device.LastUpdated = &at
		}
		require.NoError(t, repos.Devices.Create(ctx, device))

		for i := 0; i < dev.sessions; i++ {
			require.NoError(t, repos.Sessions.Append(ctx, &models.DeviceSession{
				InstanceID:    dev.instanceID,
				ActualLogTime: reportWindow.Start.Add(time.Duration(i+1) * time.Hour),
			}))
		}
		for i, tag := range dev.tags {
			require.NoError(t, repos.Logs.Create(ctx, &models.DeviceLog{
				ProjectID:     projectID,
				InstanceID:    dev.instanceID,
				Message:       "event",
				Level:         models.LogLevelInfo,
				LogTagID:      tagID(tag),
				ActualLogTime: reportWindow.Start.Add(time.Duration(i+1) * time.Minute),
			}))
		}
	}
	return tagIDs
}

func instanceIDs(items []reports.DeviceAggregate) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.InstanceID
	}
	return ids
}

func testReportQueries(t *testing.T, repos Repositories, project, other *models.Project) {
	ctx := context.Background()

	// totals per device (sessions / logs / actions):
	// 501: 1/3/1  502: 2/0/0  503: 2/1/1  504: 1/1/0  505: 3/3/2
	tagIDs := seedReportDevices(t, repos, project.ID, []reportDevice{
		{instanceID: 501, platform: models.PlatformAndroid, lastUpdated: hours(1), sessions: 1, tags: []string{"checkout", "", ""}},
		{instanceID: 502, platform: models.PlatformIOS, lastUpdated: hours(3), sessions: 2},
		{instanceID: 503, platform: models.PlatformAndroid, sessions: 2, tags: []string{"checkout"}},
		{instanceID: 504, platform: models.PlatformWeb, lastUpdated: hours(3), sessions: 1, tags: []string{""}},
		{instanceID: 505, platform: models.PlatformAndroid, lastUpdated: hours(2), sessions: 3, tags: []string{"share", "share", ""}},
	})

	// Activity outside the window: a device with only an old session, an
	// old tagged log on 501, and a tag that never gets a log.
	before := reportWindow.Start.Add(-time.Hour)
	macos := models.PlatformMacOS
	require.NoError(t, repos.Devices.Create(ctx, &models.Device{InstanceID: 506, ProjectID: project.ID, Platform: &macos, LastUpdated: &before}))
	require.NoError(t, repos.Sessions.Append(ctx, &models.DeviceSession{InstanceID: 506, ActualLogTime: before}))
	idle, err := repos.LogTags.GetOrCreate(ctx, project.ID, "idle")
	require.NoError(t, err)
	require.NoError(t, repos.Logs.Create(ctx, &models.DeviceLog{
		ProjectID: project.ID, InstanceID: 501, Message: "old", Level: models.LogLevelInfo,
		LogTagID: &idle.ID, ActualLogTime: before,
	}))
	_, err = repos.LogTags.GetOrCreate(ctx, project.ID, "never")
	require.NoError(t, err)

	list := func(t *testing.T, order reports.DeviceOrder, platform *models.Platform, page reports.Page) ([]reports.DeviceAggregate, int64) {
		t.Helper()
		items, total, err := repos.Reports.ListDevices(ctx, reports.DeviceListFilter{
			ProjectID: project.ID, Window: reportWindow, Platform: platform, Order: order, Page: page,
		})
		require.NoError(t, err)
		return items, total
	}
	all := reports.Page{Number: 1, PerPage: reports.MaxPerPage}

	t.Run("Aggregates", func(t *testing.T) {
		items, total := list(t, reports.OrderRecent, nil, all)

		assert.Equal(t, int64(5), total)
		byID := map[int64]reports.DeviceAggregate{}
		for _, item := range items {
			byID[item.InstanceID] = item
		}
		assert.NotContains(t, byID, int64(506))
		assert.Equal(t, [3]int64{1, 3, 1}, [3]int64{byID[501].TotalSessions, byID[501].TotalLogs, byID[501].TotalActions})
		assert.Equal(t, [3]int64{2, 0, 0}, [3]int64{byID[502].TotalSessions, byID[502].TotalLogs, byID[502].TotalActions})
		assert.Equal(t, [3]int64{3, 3, 2}, [3]int64{byID[505].TotalSessions, byID[505].TotalLogs, byID[505].TotalActions})
	})

	t.Run("Pagination", func(t *testing.T) {
		page := reports.Page{Number: 1, PerPage: 2}
		first, total := list(t, reports.OrderRecent, nil, page)
		page.Number = 3
		last, lastTotal := list(t, reports.OrderRecent, nil, page)
		page.Number = 4
		beyond, _ := list(t, reports.OrderRecent, nil, page)

		assert.Equal(t, int64(5), total)
		assert.Equal(t, int64(5), lastTotal)
		assert.Equal(t, int64(3), reports.NewPagination(page, total).TotalPages)
		assert.Equal(t, []int64{504, 502}, instanceIDs(first))
		assert.Equal(t, []int64{503}, instanceIDs(last))
		assert.Empty(t, beyond)
	})

	t.Run("Orders", func(t *testing.T) {
		tests := []struct {
			order reports.DeviceOrder
			want  []int64
		}{
			// 504 and 502 share last_updated; 503 has none and sorts last.
			{reports.OrderRecent, []int64{504, 502, 505, 501, 503}},
			{reports.OrderLogsAsc, []int64{502, 504, 503, 505, 501}},
			{reports.OrderLogsDesc, []int64{505, 501, 504, 503, 502}},
			{reports.OrderSessionsAsc, []int64{504, 501, 503, 502, 505}},
			{reports.OrderSessionsDesc, []int64{505, 503, 502, 504, 501}},
			{reports.OrderActionsAsc, []int64{504, 502, 503, 501, 505}},
			{reports.OrderActionsDesc, []int64{505, 503, 501, 504, 502}},
		}
		for _, tt := range tests {
			t.Run(string(tt.order), func(t *testing.T) {
				items, _ := list(t, tt.order, nil, all)
				assert.Equal(t, tt.want, instanceIDs(items))
			})
		}
	})

	t.Run("PlatformFilter", func(t *testing.T) {
		android := models.PlatformAndroid
		items, total := list(t, reports.OrderRecent, &android, all)

		assert.Equal(t, int64(3), total)
		assert.Equal(t, []int64{505, 501, 503}, instanceIDs(items))
	})

	t.Run("TagSummary", func(t *testing.T) {
		tags, err := repos.Reports.TagSummary(ctx, project.ID, reportWindow)

		require.NoError(t, err)
		counts := map[string]int64{}
		for _, tag := range tags {
			counts[tag.Tag] = tag.Count
		}
		assert.Equal(t, map[string]int64{"checkout": 2, "idle": 0, "never": 0, "share": 2}, counts)
		assert.Equal(t, tagIDs["checkout"], tags[0].ID)
	})

	t.Run("PlatformSummary", func(t *testing.T) {
		rows, err := repos.Reports.PlatformSummary(ctx, project.ID, reportWindow)

		require.NoError(t, err)
		assert.Equal(t, []reports.PlatformCount{
			{Platform: models.PlatformAndroid, DeviceCount: 2, LogCount: 7},
			{Platform: models.PlatformIOS, DeviceCount: 1},
			{Platform: models.PlatformMacOS},
			{Platform: models.PlatformWeb, DeviceCount: 1, LogCount: 1},
			{Platform: models.PlatformWindows},
		}, reports.FillPlatformSummary(rows))
	})

	t.Run("SessionsAndActionsAreProjectScoped", func(t *testing.T) {
		f := reports.InstanceWindowFilter{ProjectID: project.ID, InstanceID: 505, Window: reportWindow, Page: reports.DefaultPage()}
		sessions, sessionTotal, err := repos.Reports.ListSessions(ctx, f)
		require.NoError(t, err)
		actions, actionTotal, err := repos.Reports.ListActions(ctx, f)
		require.NoError(t, err)

		f.ProjectID = other.ID
		foreignSessions, foreignSessionTotal, err := repos.Reports.ListSessions(ctx, f)
		require.NoError(t, err)
		foreignActions, foreignActionTotal, err := repos.Reports.ListActions(ctx, f)
		require.NoError(t, err)

		assert.Equal(t, int64(3), sessionTotal)
		require.Len(t, sessions, 3)
		assert.True(t, sessions[0].ActualLogTime.After(sessions[2].ActualLogTime))
		assert.Equal(t, int64(2), actionTotal)
		require.Len(t, actions, 2)
		assert.Equal(t, "share", actions[0].Tag)
		assert.Zero(t, foreignSessionTotal)
		assert.Empty(t, foreignSessions)
		assert.Zero(t, foreignActionTotal)
		assert.Empty(t, foreignActions)
	})
}
