package handlers

import (
	"net/http"

	"github.com/prudhvinik1/devicetrack/internal/models"
)

type createTagRequest struct {
	InstanceID *int64 `json:"instance_id" validate:"required"`
	TagName    string `json:"tag_name" validate:"required"`
	TagValue   string `json:"tag_value" validate:"required"`
}

type updateTagRequest struct {
	TagValue string `json:"tag_value" validate:"required"`
}

func (api *API) createTag(rw http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !Read(rw, r, &req) {
		return
	}

	tag, err := api.Tags.Create(r.Context(), models.DeviceTag{
		InstanceID: *req.InstanceID,
		ProjectID:  projectID(r),
		TagName:    req.TagName,
		TagValue:   req.TagValue,
	})
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusCreated, tag)
}

func (api *API) listTags(rw http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	parser := NewQueryParamParser()
	instanceID := parser.Int64(vals, "instance_id")
	page := parser.Page(vals)
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Tags.List(r.Context(), projectID(r), instanceID, page)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}

func (api *API) updateTag(rw http.ResponseWriter, r *http.Request) {
	tag, ok := deviceTagFromPath(rw, r)
	if !ok {
		return
	}
	var req updateTagRequest
	if !Read(rw, r, &req) {
		return
	}

	updated, err := api.Tags.Update(r.Context(), tag, req.TagValue)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, updated)
}

func (api *API) deleteTag(rw http.ResponseWriter, r *http.Request) {
	tag, ok := deviceTagFromPath(rw, r)
	if !ok {
		return
	}

	if err := api.Tags.Delete(r.Context(), tag); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
