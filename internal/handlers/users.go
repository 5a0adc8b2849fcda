package handlers

import (
	"net/http"

	"github.com/prudhvinik1/devicetrack/internal/services"
)

type createUserRequest struct {
	Username string  `json:"username" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

func (api *API) createUser(rw http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !Read(rw, r, &req) {
		return
	}

	user, err := api.Users.Create(r.Context(), req.Username, req.Email)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusCreated, user)
}

func (api *API) listUsers(rw http.ResponseWriter, r *http.Request) {
	parser := NewQueryParamParser()
	page := parser.Page(r.URL.Query())
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Users.List(r.Context(), page)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}

func (api *API) getUser(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}

	user, err := api.Users.Get(r.Context(), id)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, user)
}

func (api *API) updateUser(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}
	var patch services.UserPatch
	if !Read(rw, r, &patch) {
		return
	}

	user, err := api.Users.Update(r.Context(), id, patch)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, user)
}

func (api *API) deleteUser(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(rw, r, "id")
	if !ok {
		return
	}

	if err := api.Users.Delete(r.Context(), id); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
