package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/obs"
	"tasklane.dev/internal/tasks"
)

// ReadyProbe reports whether the backing store is reachable.
type ReadyProbe interface {
	Ping(ctx context.Context) error
}

// Options tunes the HTTP surface; zero values fall back to defaults.
type Options struct {
	Prefix         string
	Version        string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
	Logger         *slog.Logger
}

// API is the HTTP layer.
type API struct {
	mux    *http.ServeMux
	auth   *auth.Service
	tasks  *tasks.Service
	ready  ReadyProbe
	logger *slog.Logger

	prefix       string
	version      string
	corsOrigins  []string
	ratePerSec   float64
	rateBurst    int
	maxBodyBytes int64
}

func New(authSvc *auth.Service, taskSvc *tasks.Service, ready ReadyProbe, opts Options) *API {
	a := &API{
		mux:          http.NewServeMux(),
		auth:         authSvc,
		tasks:        taskSvc,
		ready:        ready,
		logger:       opts.Logger,
		prefix:       "/" + strings.Trim(opts.Prefix, "/"),
		version:      opts.Version,
		corsOrigins:  opts.CORSOrigins,
		ratePerSec:   opts.RateLimitRPS,
		rateBurst:    opts.RateLimitBurst,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if a.prefix == "/" {
		a.prefix = ""
	}
	if a.logger == nil {
		a.logger = obs.Logger()
	}
	if len(a.corsOrigins) == 0 {
		a.corsOrigins = []string{"*"}
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}
	a.routes()
	return a
}

func (a *API) routes() {
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	limited := func(h http.Handler) http.Handler {
		return RateLimit(h, a.rateBurst, a.ratePerSec)
	}
	p := a.prefix
	a.mux.Handle("POST "+p+"/auth/register", limited(http.HandlerFunc(a.handleRegister)))
	a.mux.Handle("POST "+p+"/auth/login", limited(http.HandlerFunc(a.handleLogin)))
	a.mux.Handle("POST "+p+"/auth/logout", limited(a.guarded(a.handleLogout)))

	a.mux.Handle("GET "+p+"/todolists", a.guarded(a.handleListTasks))
	a.mux.Handle("POST "+p+"/todolists", a.guarded(a.handleCreateTask))
	a.mux.Handle("GET "+p+"/todolists/{id}", a.guarded(a.handleGetTask))
	a.mux.Handle("PUT "+p+"/todolists/{id}", a.guarded(a.handleUpdateTask))
	a.mux.Handle("PUT "+p+"/todolists/{id}/assign", a.guarded(a.handleAssignTask))
	a.mux.Handle("DELETE "+p+"/todolists/{id}", a.guarded(a.handleDeleteTask))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: a.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         600,
	})
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = c.Handler(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(a.logger)(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "tasklane-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.ready.Ping(ctx); err != nil {
			a.logger.WarnContext(r.Context(), "readiness_failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
