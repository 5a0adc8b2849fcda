package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prudhvinik1/devicetrack/internal/metrics"
)

type RouterOptions struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	AllowedOrigins     []string
	RequestTimeout     time.Duration
	RateLimitPerMinute int
}

func NewRouter(api *API, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(api.Logger.Named("http")))
	if opts.Metrics != nil {
		r.Use(Instrument(opts.Metrics))
	}
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", api.health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if api.Deploy != nil {
		r.Post("/github-webhook", api.githubWebhook)
	}

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(
				opts.RateLimitPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(rw http.ResponseWriter, _ *http.Request) {
					Write(rw, http.StatusTooManyRequests, Response{
						Message: "Rate limit exceeded. Please try again later.",
					})
				}),
			))
		}

		// Account administration is not token scoped.
		r.Route("/users", func(r chi.Router) {
			r.Post("/", api.createUser)
			r.Get("/", api.listUsers)
			r.Get("/{id}", api.getUser)
			r.Put("/{id}", api.updateUser)
			r.Delete("/{id}", api.deleteUser)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", api.createProject)
			r.Get("/", api.listProjects)
			r.Get("/{id}", api.getProject)
			r.Put("/{id}", api.updateProject)
			r.Delete("/{id}", api.deleteProject)
		})
		r.Route("/tokens", func(r chi.Router) {
			r.Post("/", api.createToken)
			r.Get("/", api.listTokens)
			r.Put("/{token}", api.updateToken)
			r.Delete("/{token}", api.deleteToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(api.Auth, api.Logger))

			r.Route("/devices", func(r chi.Router) {
				r.Post("/", api.createDevice)
				r.Get("/", api.listDevices)
				r.Post("/init", api.initDevice)
				r.Get("/{instance_id}", api.getDevice)
				r.Put("/{instance_id}", api.updateDevice)
				r.Delete("/{instance_id}", api.deleteDevice)
			})
			r.Route("/logs", func(r chi.Router) {
				r.Post("/", api.createLog)
				r.Get("/summary", api.platformSummary)
				r.Get("/by-instance", api.logsByInstance)
				r.Put("/{id}", api.updateLog)
				r.Delete("/{id}", api.deleteLog)
			})
			r.Get("/log_tags/summary", api.tagSummary)
			r.Get("/actions", api.listActions)
			r.Get("/sessions", api.listSessions)
			r.Route("/tags", func(r chi.Router) {
				r.Post("/", api.createTag)
				r.Get("/", api.listTags)
				r.Put("/{instance_id}/{tag_name}/{tag_value}", api.updateTag)
				r.Delete("/{instance_id}/{tag_name}/{tag_value}", api.deleteTag)
			})
		})
	})

	return r
}
