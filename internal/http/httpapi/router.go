package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options tune the cross-cutting middleware around the API routes.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
	// StaticDir, when set, is served under /static so filesystem-stored
	// asset URLs resolve.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, opts.RateLimitWindow))
	}

	r.Get("/v1/healthz", app.Health)

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/v1/briefs", func(r chi.Router) {
		r.Post("/parse", app.BriefsParse)
	})

	r.Route("/v1/generations", func(r chi.Router) {
		r.Post("/", app.GenerationsStart)
		r.Get("/{task_id}", app.GenerationsStatus)
		r.Get("/{task_id}/archive", app.GenerationsArchive)
		r.Post("/stream", app.GenerationsStream)
	})

	r.Route("/v1/workflow", func(r chi.Router) {
		r.Post("/run", app.WorkflowRun)
		r.Post("/resume", app.WorkflowResume)
	})

	return r
}
