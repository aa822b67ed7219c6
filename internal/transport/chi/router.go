package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/metrics"
)

// RouterOptions holds the HTTP-level policies.
type RouterOptions struct {
	APIKeys     []string
	AnswerRPS   float64
	AnswerBurst int
}

// NewRouter mounts the API on a chi router with the standard middleware chain.
func NewRouter(s *Server, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chimw.RequestID)
	r.Use(RequestLogMiddleware(logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(s.NotFound)
	r.MethodNotAllowed(s.MethodNotAllowed)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(RateLimitMiddleware(opts.AnswerRPS, opts.AnswerBurst)).Post("/answer", s.Answer)
		r.Get("/categories", s.ListCategories)
		r.Get("/categories/{category}/authors", s.ListAuthors)
		r.Get("/models", s.ListModels)
	})

	return r
}
