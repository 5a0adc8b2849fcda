package services

import (
	"context"
	"testing"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/prudhvinik1/devicetrack/internal/metrics"
	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/repositories/memstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	store   *memstore.Store
	cache   *memstore.TokenCache
	metrics *metrics.Metrics

	auth    *AuthService
	tokens  *TokenService
	users   *UserService
	project *ProjectService
	devices *DeviceService
	logs    *LogService
	tags    *DeviceTagService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	store := memstore.New()
	cache := memstore.NewTokenCache()
	m := metrics.NewNop()
	auth := NewAuthService(store.Repos().Tokens, cache, DefaultTokenCacheTTL, logger, m)

	return &fixture{
		store:   store,
		cache:   cache,
		metrics: m,
		auth:    auth,
		tokens:  NewTokenService(store, auth),
		users:   NewUserService(store),
		project: NewProjectService(store),
		devices: NewDeviceService(store, logger, m),
		logs:    NewLogService(store),
		tags:    NewDeviceTagService(store),
		reports: NewReportService(store),
	}
}

// seedProject creates a user, a project and an active token for it.
func (f *fixture) seedProject(t *testing.T, username, projectName string) (*models.Project, *models.Token) {
	t.Helper()
	ctx := context.Background()

	user, err := f.users.Create(ctx, username, nil)
	require.NoError(t, err)
	project, err := f.project.Create(ctx, user.ID, projectName)
	require.NoError(t, err)
	token, err := f.tokens.Issue(ctx, IssueTokenRequest{UserID: user.ID, ProjectID: project.ID})
	require.NoError(t, err)
	return project, token
}

func ptr[T any](v T) *T {
	return &v
}
