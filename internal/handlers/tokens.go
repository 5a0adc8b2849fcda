package handlers

import (
	"net/http"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

type createTokenRequest struct {
	Token     string `json:"token"`
	Status    string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	UserID    int64  `json:"user_id" validate:"required"`
	ProjectID int64  `json:"project_id" validate:"required"`
}

type updateTokenRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

func (api *API) createToken(rw http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if !Read(rw, r, &req) {
		return
	}

	token, err := api.Tokens.Issue(r.Context(), services.IssueTokenRequest{
		Token:     req.Token,
		Status:    models.TokenStatus(req.Status),
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusCreated, token)
}

func (api *API) listTokens(rw http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	parser := NewQueryParamParser()
	userID := parser.Int64(vals, "user_id")
	projectID := parser.Int64(vals, "project_id")
	page := parser.Page(vals)
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Tokens.List(r.Context(), userID, projectID, page)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}

func (api *API) updateToken(rw http.ResponseWriter, r *http.Request) {
	var req updateTokenRequest
	if !Read(rw, r, &req) {
		return
	}

	token, err := api.Tokens.SetStatus(r.Context(), pathString(r, "token"), models.TokenStatus(req.Status))
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, token)
}

func (api *API) deleteToken(rw http.ResponseWriter, r *http.Request) {
	if err := api.Tokens.Revoke(r.Context(), pathString(r, "token")); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}
