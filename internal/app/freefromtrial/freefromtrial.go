// Package freefromtrial собирает основное HTTP-приложение: хранилище,
// миграции, кеш, сессии, сервисы и маршруты.
package freefromtrial

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/freefromtrial/backend/internal/cache"
	"github.com/freefromtrial/backend/internal/config"
	"github.com/freefromtrial/backend/internal/lib/session"
	"github.com/freefromtrial/backend/internal/migrations"
	dashboardservice "github.com/freefromtrial/backend/internal/services/dashboard"
	trialservice "github.com/freefromtrial/backend/internal/services/trial"
	"github.com/freefromtrial/backend/internal/storage/repository"
)

// App представляет основное приложение FreeFromTrial.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключает базу, применяет миграции,
// инициализирует Redis, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	sessionMaker := session.NewMaker(cfg.SessionSecretKey, cfg.SessionTTL, cfg.SecureCookies)
	trialService := trialservice.New(db, cacheRedis, logger)
	dashboardService := dashboardservice.New(trialService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, sessionMaker, trialService, dashboardService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста
// или фатальной ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
