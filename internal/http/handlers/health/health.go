// Package health реализует HTTP-обработчики проверки живости сервиса
// и готовности его зависимостей.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/sl"
)

// StorageChecker описывает интерфейс проверки готовности хранилища.
type StorageChecker interface {
	CheckDatabaseReady(ctx context.Context) error
}

// Handler управляет HTTP-запросами проверки здоровья сервиса.
type Handler struct {
	log     *slog.Logger
	storage StorageChecker
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, storage StorageChecker) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
	}
}

// Live godoc
// @Summary Живость сервиса
// @Description Возвращает 200, пока процесс принимает запросы.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис жив"
// @Router /health/live [get]
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"alive": true,
	}))
}

// Ready godoc
// @Summary Готовность сервиса
// @Description Проверяет доступность базы данных.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Зависимости доступны"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.Ready"

	if err := h.storage.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"ready": true,
	}))
}
