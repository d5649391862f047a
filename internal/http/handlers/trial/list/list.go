// Package list реализует HTTP-обработчик полного списка подписок пользователя
// с фильтрацией по статусу и поисковой строке.
package list

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
	"github.com/freefromtrial/backend/internal/models"
)

// Service описывает интерфейс получения отфильтрованного списка подписок.
type Service interface {
	Filtered(ctx context.Context, userUID, statusFilter, search string, now time.Time) ([]models.TrialView, bool, error)
}

// Handler управляет HTTP-запросами списка подписок.
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
// @Summary Список подписок
// @Description Возвращает подписки текущего пользователя с фильтрацией по статусу и поиском по названию или категории.
// @Tags Trials
// @Produce  json
// @Param status query string false "Фильтр статуса: all|urgent|warning|safe|cancelled"
// @Param search query string false "Поисковая строка"
// @Success 200 {object} map[string]any "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Не удалось загрузить список"
// @Router /trials [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.list"
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

	statusFilter := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	views, available, err := h.service.Filtered(r.Context(), userUID, statusFilter, search, time.Now())
	if err != nil && !available {
		log.Error("failed to list trials", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to load trials"))
		return
	}
	if err != nil {
		// Загрузка не удалась, но есть последний успешный снимок.
		log.Warn("serving last known trials snapshot", sl.Err(err))
	}

	log.Info("list trials", slog.Int("count", len(views)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":  len(views),
		"trials": views,
	}))
}
