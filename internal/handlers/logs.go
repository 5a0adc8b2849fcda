package handlers

import (
	"net/http"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

type createLogRequest struct {
	InstanceID    *int64  `json:"instance_id" validate:"required"`
	Message       string  `json:"message" validate:"required"`
	Level         string  `json:"level" validate:"required,oneof=INFO WARNING ERROR"`
	Tag           *string `json:"tag"`
	ActualLogTime *string `json:"actual_log_time"`
}

type updateLogRequest struct {
	Message *string `json:"message"`
	Level   *string `json:"level" validate:"omitempty,oneof=INFO WARNING ERROR"`
}

func (api *API) createLog(rw http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if !Read(rw, r, &req) {
		return
	}
	occurred, err := parseInstantField("actual_log_time", req.ActualLogTime)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	log, err := api.Logs.Create(r.Context(), projectID(r), services.CreateLogRequest{
		InstanceID:    *req.InstanceID,
		Message:       req.Message,
		Level:         models.LogLevel(req.Level),
		Tag:           req.Tag,
		ActualLogTime: occurred,
	})
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusCreated, log)
}

func (api *API) updateLog(rw http.ResponseWriter, r *http.Request) {
	logID, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}
	var req updateLogRequest
	if !Read(rw, r, &req) {
		return
	}

	patch := services.LogPatch{Message: req.Message}
	if req.Level != nil {
		level := models.LogLevel(*req.Level)
		patch.Level = &level
	}
	log, err := api.Logs.Update(r.Context(), projectID(r), logID, patch)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, log)
}

func (api *API) deleteLog(rw http.ResponseWriter, r *http.Request) {
	logID, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}

	if err := api.Logs.Delete(r.Context(), projectID(r), logID); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (api *API) logsByInstance(rw http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	parser := NewQueryParamParser()
	filter := reports.LogListFilter{
		ProjectID:  projectID(r),
		InstanceID: parser.RequiredInt64(vals, "instance_id"),
		Level:      parser.LogLevel(vals, "level"),
		TagID:      parser.Int64(vals, "tag_id"),
		StartDate:  parser.Date(vals, "start_date"),
		EndDate:    parser.Date(vals, "end_date"),
		Page:       parser.Page(vals),
	}
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Reports.Logs(r.Context(), filter)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}
