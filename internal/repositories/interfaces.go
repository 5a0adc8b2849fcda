package repositories

import (
	"context"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, page reports.Page) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, userID *int64, page reports.Page) ([]*models.Project, int64, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	GetByToken(ctx context.Context, token string) (*models.Token, error)
	List(ctx context.Context, userID, projectID *int64, page reports.Page) ([]*models.Token, int64, error)
	UpdateStatus(ctx context.Context, token string, status models.TokenStatus) error
	Delete(ctx context.Context, token string) error
}

type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	CreateIfAbsent(ctx context.Context, device *models.Device) (bool, error)
	GetForUpdate(ctx context.Context, instanceID int64) (*models.Device, error)
	GetByID(ctx context.Context, projectID, instanceID int64) (*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, projectID, instanceID int64) error
}

type DeviceSessionRepository interface {
	Append(ctx context.Context, session *models.DeviceSession) error
}

type DeviceLogRepository interface {
	Create(ctx context.Context, log *models.DeviceLog) error
	GetByID(ctx context.Context, projectID, logID int64) (*models.DeviceLog, error)
	Update(ctx context.Context, log *models.DeviceLog) error
	Delete(ctx context.Context, projectID, logID int64) error
}

type LogTagRepository interface {
	GetOrCreate(ctx context.Context, projectID int64, tag string) (*models.LogTag, error)
}

type DeviceTagRepository interface {
	Create(ctx context.Context, tag *models.DeviceTag) error
	List(ctx context.Context, projectID int64, instanceID *int64, page reports.Page) ([]*models.DeviceTag, int64, error)
	UpdateValue(ctx context.Context, tag models.DeviceTag, newValue string) error
	Delete(ctx context.Context, tag models.DeviceTag) error
}

type ReportRepository interface {
	ListDevices(ctx context.Context, f reports.DeviceListFilter) ([]reports.DeviceAggregate, int64, error)
	ListLogs(ctx context.Context, f reports.LogListFilter) ([]models.DeviceLog, int64, error)
	ListActions(ctx context.Context, f reports.InstanceWindowFilter) ([]reports.ActionEntry, int64, error)
	ListSessions(ctx context.Context, f reports.InstanceWindowFilter) ([]reports.SessionEntry, int64, error)
	TagSummary(ctx context.Context, projectID int64, w reports.Window) ([]reports.TagCount, error)
	PlatformSummary(ctx context.Context, projectID int64, w reports.Window) ([]reports.PlatformCount, error)
}

// TokenCache is the time-boxed token → identity lookup used by the auth gate.
// Get returns ErrCacheMiss for absent or expired entries.
type TokenCache interface {
	Get(ctx context.Context, token string) (*models.TokenIdentity, error)
	Set(ctx context.Context, token string, identity models.TokenIdentity, ttl time.Duration) error
	Invalidate(ctx context.Context, token string) error
}

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	Users    UserRepository
	Projects ProjectRepository
	Tokens   TokenRepository
	Devices  DeviceRepository
	Sessions DeviceSessionRepository
	Logs     DeviceLogRepository
	LogTags  LogTagRepository
	Tags     DeviceTagRepository
	Reports  ReportRepository
}

// Store hands out repositories and runs units of work. A function passed to
// InTx sees repositories bound to one transaction, committed only when it
// returns nil.
type Store interface {
	Repos() Repositories
	InTx(ctx context.Context, fn func(Repositories) error) error
}
