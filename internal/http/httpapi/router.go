package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mockup/internal/http/handlers"
	"mockup/internal/middleware"
)

// Options carries the router's cross-cutting settings.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
	// StaticDir is served under /static when the filesystem result store is
	// active; empty disables the route.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/", app.Index)
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.With(middleware.BodyLimit(opts.MaxUploadBytes)).Post("/generate-mockup", app.GenerateMockup)

	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
