package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/jiwar-sa/analytics-service/internal/config"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/handlers"
	appmw "github.com/jiwar-sa/analytics-service/internal/transport/http/middleware"
)

func New(
	t *handlers.TrackHandler,
	l *handlers.LogsHandler,
	c *handlers.CleanupHandler,
	z *handlers.HealthHandler,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(appmw.RequestID)
	r.Use(appmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appmw.AccessLog)

	r.Get("/healthz", z.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RLEnabled {
				r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
			}
			r.Post("/track", t.Post)
		})

		r.Get("/logs", l.Get)
		r.Get("/stats", l.GetStats)
		r.Post("/cleanup", c.Post)
	})

	return r
}
