// Package logout реализует HTTP-обработчик выхода из сессии.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/freefromtrial/backend/internal/http/middlewarectx"
	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/session"
)

// SnapshotForgetter описывает интерфейс сброса закэшированного снимка пользователя.
type SnapshotForgetter interface {
	Forget(userUID string)
}

// Handler управляет HTTP-запросами выхода из сессии.
type Handler struct {
	log       *slog.Logger
	snapshots SnapshotForgetter
}

// New создает новый Handler с переданными логгером и сервисом снимков.
func New(log *slog.Logger, snapshots SnapshotForgetter) *Handler {
	return &Handler{
		log:       log,
		snapshots: snapshots,
	}
}

// ServeHTTP godoc
// @Summary Выход из сессии
// @Description Сбрасывает сессионную cookie и снимок панели текущего пользователя.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия завершена"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if userUID, ok := r.Context().Value(middlewarectx.UserUID).(string); ok && userUID != "" {
		h.snapshots.Forget(userUID)
		log.Info("logged out", slog.String("uid", userUID))
	}

	http.SetCookie(w, session.ExpiredCookie())
	render.JSON(w, r, response.OKWithData(map[string]any{
		"loggedOut": true,
	}))
}
