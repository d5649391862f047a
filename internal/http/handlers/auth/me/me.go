// Package me реализует HTTP-обработчик профиля текущего пользователя.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/freefromtrial/backend/internal/http/middlewarectx"
	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/models"
	"github.com/freefromtrial/backend/internal/storage/repository"
)

// UserReader описывает интерфейс чтения пользователя из хранилища.
type UserReader interface {
	ReadUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// Handler управляет HTTP-запросами профиля пользователя.
type Handler struct {
	log   *slog.Logger
	users UserReader
}

// New создает новый Handler с переданными логгером и хранилищем пользователей.
func New(log *slog.Logger, users UserReader) *Handler {
	return &Handler{
		log:   log,
		users: users,
	}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Возвращает профиль текущего авторизованного пользователя.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Профиль"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"
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

	user, err := h.users.ReadUserByUID(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Сессия подписана, но пользователь удалён из хранилища.
			log.Error("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		log.Error("failed to read user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read user"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      user.UID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	}))
}
