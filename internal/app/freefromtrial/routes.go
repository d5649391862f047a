package freefromtrial

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/freefromtrial/backend/internal/config"
	"github.com/freefromtrial/backend/internal/http/handlers/auth/logout"
	"github.com/freefromtrial/backend/internal/http/handlers/auth/me"
	"github.com/freefromtrial/backend/internal/http/handlers/dashboard/summary"
	"github.com/freefromtrial/backend/internal/http/handlers/health"
	oauthgoogle "github.com/freefromtrial/backend/internal/http/handlers/oauth/google"
	"github.com/freefromtrial/backend/internal/http/handlers/trial/create"
	"github.com/freefromtrial/backend/internal/http/handlers/trial/list"
	"github.com/freefromtrial/backend/internal/http/handlers/trial/read"
	"github.com/freefromtrial/backend/internal/http/handlers/trial/remove"
	"github.com/freefromtrial/backend/internal/http/handlers/trial/update"
	"github.com/freefromtrial/backend/internal/http/handlers/webhook/trialcreate"
	"github.com/freefromtrial/backend/internal/http/middlewarectx"
	"github.com/freefromtrial/backend/internal/lib/session"
	dashboardservice "github.com/freefromtrial/backend/internal/services/dashboard"
	trialservice "github.com/freefromtrial/backend/internal/services/trial"
	"github.com/freefromtrial/backend/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	db *repository.Storage, sessionMaker *session.Maker,
	trialService *trialservice.Service, dashboardService *dashboardservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	healthHandler := health.New(logger, db)
	googleHandler := oauthgoogle.New(logger, db, sessionMaker, cfg)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)
		r.Get("/oauth/google", googleHandler.Start)
		r.Get("/oauth/google/callback", googleHandler.Callback)

		// Webhook endpoint (аутентификация общим секретом)
		r.Post("/webhooks/trials", trialcreate.New(logger, trialService, cfg.WebhookSharedSecret).ServeHTTP)

		// Группа с сессионной аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(sessionMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/trials", create.New(logger, trialService).ServeHTTP)
			r.Get("/trials", list.New(logger, dashboardService).ServeHTTP)
			r.Get("/trials/{id}", read.New(logger, trialService).ServeHTTP)
			r.Patch("/trials/{id}", update.New(logger, trialService).ServeHTTP)
			r.Delete("/trials/{id}", remove.New(logger, trialService).ServeHTTP)
			r.Get("/dashboard/summary", summary.New(logger, dashboardService).ServeHTTP)
			r.Get("/auth/me", me.New(logger, db).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger, dashboardService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
