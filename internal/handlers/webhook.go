package handlers

import (
	"errors"
	"io"
	"net/http"

	"cdr.dev/slog/v3"

	"github.com/prudhvinik1/devicetrack/internal/services"
)

const maxWebhookBody = 1 << 20

// githubWebhook verifies a push delivery and pulls the deployed checkout.
func (api *API) githubWebhook(rw http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxWebhookBody))
	if err != nil {
		Write(rw, http.StatusBadRequest, Response{Message: "Could not read payload."})
		return
	}

	if err := api.Deploy.Verify(payload, r.Header.Get("X-Hub-Signature-256")); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			api.Logger.Warn(r.Context(), "rejected webhook", slog.F("remote_addr", r.RemoteAddr))
			Write(rw, http.StatusForbidden, Response{Message: "Invalid signature."})
			return
		}
		writeError(rw, r, api.Logger, err)
		return
	}

	out, err := api.Deploy.Pull(r.Context())
	if err != nil {
		Write(rw, http.StatusInternalServerError, map[string]string{
			"message": "Deployment failed.",
			"output":  out,
		})
		return
	}
	Write(rw, http.StatusOK, map[string]string{
		"message": "Deployment complete.",
		"output":  out,
	})
}
