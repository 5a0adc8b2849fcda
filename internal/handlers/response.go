package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"cdr.dev/slog/v3"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/prudhvinik1/devicetrack/internal/repositories"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

// A single validator instance is used, because it caches struct parsing.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Response is the body of every non-2xx answer.
type Response struct {
	Message string                `json:"message"`
	Errors  []services.FieldError `json:"errors,omitempty"`
}

func Write(rw http.ResponseWriter, status int, response any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(response); err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	_, _ = rw.Write(buf.Bytes())
}

// Read decodes a JSON body into value and validates it. On failure it has
// already written a 400 and returns false.
func Read(rw http.ResponseWriter, r *http.Request, value any) bool {
	if err := json.NewDecoder(r.Body).Decode(value); err != nil {
		Write(rw, http.StatusBadRequest, Response{
			Message: fmt.Sprintf("read body: %s", err.Error()),
		})
		return false
	}

	err := validate.Struct(value)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apiErrors := make([]services.FieldError, 0, len(validationErrors))
		for _, ve := range validationErrors {
			apiErrors = append(apiErrors, services.FieldError{
				Field:  ve.Field(),
				Detail: fmt.Sprintf("Validation failed for tag %q with value: \"%v\"", ve.Tag(), ve.Value()),
			})
		}
		Write(rw, http.StatusBadRequest, Response{
			Message: "Validation failed",
			Errors:  apiErrors,
		})
		return false
	}
	if err != nil {
		Write(rw, http.StatusInternalServerError, Response{
			Message: fmt.Sprintf("validation: %s", err.Error()),
		})
		return false
	}
	return true
}

// writeError maps service and repository errors onto status codes. Anything
// unrecognised is logged and answered with a 500.
func writeError(rw http.ResponseWriter, r *http.Request, logger slog.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		Write(rw, http.StatusBadRequest, Response{Message: verr.Message, Errors: verr.Errors})
	case errors.Is(err, services.ErrUnauthenticated):
		Write(rw, http.StatusUnauthorized, Response{Message: "Invalid or inactive token."})
	case errors.Is(err, repositories.ErrNotFound):
		Write(rw, http.StatusNotFound, Response{Message: "Resource not found."})
	case errors.Is(err, repositories.ErrDuplicate):
		Write(rw, http.StatusBadRequest, Response{Message: "Resource already exists."})
	case errors.Is(err, context.DeadlineExceeded):
		Write(rw, http.StatusGatewayTimeout, Response{Message: "Request timed out."})
	default:
		logger.Error(r.Context(), "request failed",
			slog.F("request_id", middleware.GetReqID(r.Context())),
			slog.F("path", r.URL.Path),
			slog.Error(err),
		)
		Write(rw, http.StatusInternalServerError, Response{Message: "Internal server error."})
	}
}
