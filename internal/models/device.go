package models

import (
	"fmt"
	"time"
)

type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
)

// Platforms lists every platform in name order.
var Platforms = []Platform{
	PlatformAndroid,
	PlatformIOS,
	PlatformMacOS,
	PlatformWeb,
	PlatformWindows,
}

func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Device is keyed by the caller supplied instance id.
type Device struct {
	InstanceID  int64      `json:"instance_id"`
	DeviceID    *int64     `json:"device_id"`
	ProjectID   int64      `json:"project_id"`
	Name        *string    `json:"name"`
	Model       *string    `json:"model"`
	Platform    *Platform  `json:"platform"`
	Country     *string    `json:"country"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated *time.Time `json:"last_updated"`
}

// DevicePatch carries presence-aware device fields. Absent fields are kept,
// explicit nulls clear the column.
type DevicePatch struct {
	DeviceID Optional[int64]    `json:"device_id"`
	Name     Optional[string]   `json:"name"`
	Model    Optional[string]   `json:"model"`
	Platform Optional[Platform] `json:"platform"`
	Country  Optional[string]   `json:"country"`
}

func (p DevicePatch) ApplyTo(d *Device) {
	p.DeviceID.ApplyTo(&d.DeviceID)
	p.Name.ApplyTo(&d.Name)
	p.Model.ApplyTo(&d.Model)
	p.Platform.ApplyTo(&d.Platform)
	p.Country.ApplyTo(&d.Country)
}

type DeviceTag struct {
	InstanceID int64  `json:"instance_id"`
	ProjectID  int64  `json:"project_id"`
	TagName    string `json:"tag_name"`
	TagValue   string `json:"tag_value"`
}

type DeviceSession struct {
	ID            int64     `json:"id"`
	InstanceID    int64     `json:"instance_id"`
	ActualLogTime time.Time `json:"actual_log_time"`
	CreatedAt     time.Time `json:"created_at"`
}
