package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cdr.dev/slog/v3"
	"github.com/go-chi/chi/v5"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

// API holds the services behind every HTTP handler.
type API struct {
	Logger   slog.Logger
	Auth     *services.AuthService
	Users    *services.UserService
	Projects *services.ProjectService
	Tokens   *services.TokenService
	Devices  *services.DeviceService
	Logs     *services.LogService
	Tags     *services.DeviceTagService
	Reports  *services.ReportService
	Deploy   *services.DeployService

	// Now is the clock used to resolve default report windows.
	Now func() time.Time
}

func (api *API) now() time.Time {
	if api.Now != nil {
		return api.Now()
	}
	return time.Now()
}

// pathInt64 parses a numeric URL param, writing a 400 when it is malformed.
func pathInt64(rw http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		Write(rw, http.StatusBadRequest, Response{
			Message: "Invalid path parameter.",
			Errors:  []services.FieldError{{Field: name, Detail: "must be an integer"}},
		})
		return 0, false
	}
	return v, true
}

// pathString returns a URL param with percent-escapes decoded.
func pathString(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// projectID is the token project of an authenticated request.
func projectID(r *http.Request) int64 {
	identity, _ := Identity(r.Context())
	return identity.ProjectID
}

// parseInstantField parses an optional RFC 3339 body field.
func parseInstantField(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := reports.ParseInstant(*value)
	if err != nil {
		return nil, services.NewValidationError(field, err.Error())
	}
	return &t, nil
}

func (api *API) health(rw http.ResponseWriter, _ *http.Request) {
	Write(rw, http.StatusOK, map[string]string{"status": "ok"})
}

// deviceTagFromPath reads the tag identity from /{instance_id}/{tag_name}/{tag_value}.
func deviceTagFromPath(rw http.ResponseWriter, r *http.Request) (models.DeviceTag, bool) {
	instanceID, ok := pathInt64(rw, r, "instance_id")
	if !ok {
		return models.DeviceTag{}, false
	}
	return models.DeviceTag{
		InstanceID: instanceID,
		ProjectID:  projectID(r),
		TagName:    pathString(r, "tag_name"),
		TagValue:   pathString(r, "tag_value"),
	}, true
}
