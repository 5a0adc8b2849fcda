package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cdr.dev/slog/v3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prudhvinik1/devicetrack/internal/metrics"
	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

type identityKey struct{}

// Identity returns the token identity stored by the auth middleware.
func Identity(ctx context.Context) (models.TokenIdentity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.TokenIdentity)
	return identity, ok
}

// Authenticate resolves the raw Authorization header to a (user, project)
// pair. Requests without a valid active token get a 401.
func Authenticate(auth *services.AuthService, logger slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			identity, err := auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeError(rw, r, logger, err)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey{}, *identity)
			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}

// routePattern is only complete after routing, so call it once the next
// handler has returned.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func RequestLogger(logger slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []slog.Field{
				slog.F("method", r.Method),
				slog.F("path", r.URL.Path),
				slog.F("status", ww.Status()),
				slog.F("bytes", ww.BytesWritten()),
				slog.F("duration", time.Since(start)),
				slog.F("request_id", middleware.GetReqID(r.Context())),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn(r.Context(), "request", fields...)
				return
			}
			logger.Debug(r.Context(), "request", fields...)
		})
	}
}

func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
