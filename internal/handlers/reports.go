package handlers

import (
	"net/http"

	"github.com/prudhvinik1/devicetrack/internal/reports"
)

func (api *API) platformSummary(rw http.ResponseWriter, r *http.Request) {
	parser := NewQueryParamParser()
	window := parser.Window(r.URL.Query(), api.now())
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	summary, err := api.Reports.PlatformSummary(r.Context(), projectID(r), window)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, summary)
}

func (api *API) tagSummary(rw http.ResponseWriter, r *http.Request) {
	parser := NewQueryParamParser()
	window := parser.Window(r.URL.Query(), api.now())
	if err := parser.Err(); err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	summary, err := api.Reports.TagSummary(r.Context(), projectID(r), window)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, summary)
}

func (api *API) instanceWindowFilter(r *http.Request) (reports.InstanceWindowFilter, error) {
	vals := r.URL.Query()
	parser := NewQueryParamParser()
	filter := reports.InstanceWindowFilter{
		ProjectID:  projectID(r),
		InstanceID: parser.RequiredInt64(vals, "instance_id"),
		Window:     parser.Window(vals, api.now()),
		Page:       parser.Page(vals),
	}
	return filter, parser.Err()
}

func (api *API) listActions(rw http.ResponseWriter, r *http.Request) {
	filter, err := api.instanceWindowFilter(r)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Reports.Actions(r.Context(), filter)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}

func (api *API) listSessions(rw http.ResponseWriter, r *http.Request) {
	filter, err := api.instanceWindowFilter(r)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}

	list, err := api.Reports.Sessions(r.Context(), filter)
	if err != nil {
		writeError(rw, r, api.Logger, err)
		return
	}
	Write(rw, http.StatusOK, list)
}
