package reports

import (
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
)

type DeviceOrder string

const (
	OrderRecent       DeviceOrder = "recent"
	OrderLogsAsc      DeviceOrder = "logs_asc"
	OrderLogsDesc     DeviceOrder = "logs_desc"
	OrderSessionsAsc  DeviceOrder = "sessions_asc"
	OrderSessionsDesc DeviceOrder = "sessions_desc"
	OrderActionsAsc   DeviceOrder = "actions_asc"
	OrderActionsDesc  DeviceOrder = "actions_desc"
)

// orderClauses maps each order to its ORDER BY prefix. The instance id
// tie-break is appended by the builder.
var orderClauses = map[DeviceOrder]string{
	OrderRecent:       "d.last_updated DESC NULLS LAST",
	OrderLogsAsc:      "total_logs ASC",
	OrderLogsDesc:     "total_logs DESC",
	OrderSessionsAsc:  "total_sessions ASC",
	OrderSessionsDesc: "total_sessions DESC",
	OrderActionsAsc:   "total_actions ASC",
	OrderActionsDesc:  "total_actions DESC",
}

func ParseDeviceOrder(s string) (DeviceOrder, error) {
	o := DeviceOrder(s)
	if _, ok := orderClauses[o]; !ok {
		return "", errUnknownOrder(s)
	}
	return o, nil
}

type DeviceListFilter struct {
	ProjectID int64
	Window    Window
	Platform  *models.Platform
	Order     DeviceOrder
	Page      Page
}

type DeviceAggregate struct {
	InstanceID    int64            `json:"instance_id"`
	DeviceID      *int64           `json:"device_id"`
	Name          *string          `json:"name"`
	Model         *string          `json:"model"`
	Platform      *models.Platform `json:"platform"`
	Country       *string          `json:"country"`
	CreatedAt     time.Time        `json:"created_at"`
	LastUpdated   *time.Time       `json:"last_updated"`
	TotalLogs     int64            `json:"total_logs"`
	TotalSessions int64            `json:"total_sessions"`
	TotalActions  int64            `json:"total_actions"`
}

type LogListFilter struct {
	ProjectID  int64
	InstanceID int64
	Level      *models.LogLevel
	TagID      *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Page       Page
}

// InstanceWindowFilter selects one device's rows inside a window.
type InstanceWindowFilter struct {
	ProjectID  int64
	InstanceID int64
	Window     Window
	Page       Page
}

type TagCount struct {
	ID    int64  `json:"id"`
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type PlatformCount struct {
	Platform    models.Platform `json:"platform"`
	DeviceCount int64           `json:"device_count"`
	LogCount    int64           `json:"log_count"`
}

type ActionEntry struct {
	ActualLogTime time.Time `json:"actual_log_time"`
	Tag           string    `json:"tag"`
}

type SessionEntry struct {
	ActualLogTime time.Time `json:"actual_log_time"`
}
