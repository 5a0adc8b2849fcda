package handlers

import (
	"net/http"
)

type createProjectRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type updateProjectRequest struct {
	Name string `json:"name" validate:"required"`
}

func (api *API) createProject(rw http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !Read(rw, r, &req) {
		return
	}

	project, err := api.Projects.Create(r.Context(), req.UserID, req.Name)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusCreated, project)
}

func (api *API) listProjects(rw http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	parser := NewQueryParamParser()
	userID := parser.Int64(vals, "user_id")
	page := parser.Page(vals)
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Projects.List(r.Context(), userID, page)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}

func (api *API) getProject(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}

	project, err := api.Projects.Get(r.Context(), id)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, project)
}

func (api *API) updateProject(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}
	var req updateProjectRequest
	if !Read(rw, r, &req) {
		return
	}

	project, err := api.Projects.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, project)
}

func (api *API) deleteProject(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}

	if err := api.Projects.Delete(r.Context(), id); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
