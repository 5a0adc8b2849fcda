package models

import (
	"fmt"
	"time"
)

type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

func ParseLogLevel(s string) (LogLevel, error) {
	switch LogLevel(s) {
	case LogLevelInfo, LogLevelWarning, LogLevelError:
		return LogLevel(s), nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

type DeviceLog struct {
	ID            int64     `json:"log_id"`
	ProjectID     int64     `json:"project_id"`
	InstanceID    int64     `json:"instance_id"`
	Message       string    `json:"message"`
	Level         LogLevel  `json:"level"`
	LogTagID      *int64    `json:"log_tag_id"`
	Tag           *string   `json:"tag"`
	ActualLogTime time.Time `json:"actual_log_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// LogTag is a project scoped label, unique per (project, tag).
type LogTag struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Tag       string `json:"tag"`
}
