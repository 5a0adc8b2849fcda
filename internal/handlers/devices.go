package handlers

import (
	"net/http"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

// deviceRequest is the body of both device create and device init. Patch
// fields keep their presence information.
type deviceRequest struct {
	InstanceID *int64 `json:"instance_id" validate:"required"`
	models.DevicePatch
	ActualLogTime *string `json:"actual_log_time"`
}

func (api *API) initDevice(rw http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if !Read(rw, r, &req) {
		return
	}
	occurred, err := parseInstantField("actual_log_time", req.ActualLogTime)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	device, err := api.Devices.Init(r.Context(), projectID(r), services.DeviceInit{
		InstanceID:    *req.InstanceID,
		Patch:         req.DevicePatch,
		ActualLogTime: occurred,
	})
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, device)
}

func (api *API) createDevice(rw http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if !Read(rw, r, &req) {
		return
	}
	lastUpdated, err := parseInstantField("actual_log_time", req.ActualLogTime)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	device, err := api.Devices.Create(r.Context(), projectID(r), *req.InstanceID, req.DevicePatch, lastUpdated)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusCreated, device)
}

func (api *API) listDevices(rw http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	parser := NewQueryParamParser()
	filter := reports.DeviceListFilter{
		ProjectID: projectID(r),
		Window:    parser.Window(vals, api.now()),
		Platform:  parser.Platform(vals, "platform"),
		Order:     parser.Order(vals, "order"),
		Page:      parser.Page(vals),
	}
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Reports.Devices(r.Context(), filter)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}

func (api *API) getDevice(rw http.ResponseWriter, r *http.Request) {
	instanceID, ok := pathInt64(rw, r, "instance_id")
	if !ok {
		return
	}

	device, err := api.Devices.Get(r.Context(), projectID(r), instanceID)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, device)
}

func (api *API) updateDevice(rw http.ResponseWriter, r *http.Request) {
	instanceID, ok := pathInt64(rw, r, "instance_id")
	if !ok {
		return
	}
	var patch models.DevicePatch
	if !Read(rw, r, &patch) {
		return
	}

	device, err := api.Devices.Update(r.Context(), projectID(r), instanceID, patch)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, device)
}

func (api *API) deleteDevice(rw http.ResponseWriter, r *http.Request) {
	instanceID, ok := pathInt64(rw, r, "instance_id")
	if !ok {
		return
	}

	if err := api.Devices.Delete(r.Context(), projectID(r), instanceID); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
