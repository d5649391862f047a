// Package session реализует выпуск и проверку cookie-сессий на основе
// подписанных токенов. Сессия создаётся после успешного входа через
// OAuth-провайдера и проверяется middleware на каждом запросе.
package session

import "github.com/golang-jwt/jwt/v5"

// Claims описывает данные пользователя, хранящиеся в сессионном токене.
type Claims struct {
	UserUID              string `json:"uid"`   // Идентификатор пользователя
	Email                string `json:"email"` // Электронная почта
	jwt.RegisteredClaims        // Стандартные поля (ExpiresAt, IssuedAt и пр.)
}
