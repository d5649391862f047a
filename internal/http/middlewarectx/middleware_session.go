// Package middlewarectx содержит HTTP middleware для проверки cookie-сессий
// и ограничения частоты запросов.
//
// SessionMiddleware проверяет наличие и валидность сессионного токена
// в cookie, и в случае успеха добавляет в контекст идентификатор и email
// пользователя для дальнейшего использования в обработчиках.
//
// Отсутствие сессии возвращает HTTP 401 Unauthorized: клиент обязан
// трактовать это как "нет сессии", а не как пустую коллекцию.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/session"
	"github.com/freefromtrial/backend/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Email — ключ для email пользователя в контексте
	Email Key = "email"
)

// SessionParser описывает интерфейс проверки сессионного токена.
type SessionParser interface {
	Parse(tokenStr string) (*session.Claims, error)
}

// SessionMiddleware возвращает HTTP middleware, который проверяет сессионную
// cookie. Если сессия валидна, добавляет идентификатор и email пользователя
// в контекст запроса, иначе возвращает 401 Unauthorized.
func SessionMiddleware(maker SessionParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				if err != nil && !errors.Is(err, http.ErrNoCookie) {
					log.Error("failed to read session cookie", sl.Err(err))
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("not authenticated"))
				return
			}

			claims, err := maker.Parse(cookie.Value)
			if err != nil {
				log.Error("invalid or expired session", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
