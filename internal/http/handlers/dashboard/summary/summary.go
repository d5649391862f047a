// Package summary реализует HTTP-обработчик сводки панели пользователя:
// счётчики по статусам, сумма экономии, срочные и ближайшие подписки.
package summary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/freefromtrial/backend/internal/http/middlewarectx"
	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/services/dashboard"
)

// Service описывает интерфейс сборки сводки панели.
type Service interface {
	Summary(ctx context.Context, userUID string, now time.Time) (dashboard.Summary, error)
}

// Handler управляет HTTP-запросами сводки панели.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка панели
// @Description Возвращает счётчики, сумму экономии и списки срочных и ближайших подписок текущего пользователя.
// @Tags Dashboard
// @Produce  json
// @Success 200 {object} map[string]any "Сводка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Не удалось загрузить данные"
// @Router /dashboard/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.summary"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Summary(r.Context(), userUID, time.Now())
	if err != nil && !result.Available {
		log.Error("failed to build dashboard summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load trials"))
		return
	}
	if err != nil {
		log.Warn("serving last known dashboard snapshot", sl.Err(err))
	}

	render.JSON(w, r, response.OKWithData(result))
}
