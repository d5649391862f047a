package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/freefromtrial/backend/internal/models"
)

// CookieName — имя сессионной cookie.
const CookieName = "fft_session"

// Maker выпускает и проверяет сессионные токены.
type Maker struct {
	secretKey string
	ttl       time.Duration
	secure    bool
}

// NewMaker создает новый Maker с секретным ключом и временем жизни сессии.
func NewMaker(secretKey string, ttl time.Duration, secure bool) *Maker {
	return &Maker{secretKey: secretKey, ttl: ttl, secure: secure}
}

// Issue создает сессионный токен для пользователя, подписывая его
// секретным ключом. Время жизни токена определяется ttl.
func (m *Maker) Issue(user models.User) (string, error) {
	claims := Claims{
		UserUID: user.UID,
		Email:   user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Parse парсит сессионный токен, проверяет подпись и срок действия,
// возвращает Claims, если токен корректен.
func (m *Maker) Parse(tokenStr string) (*Claims, error) {
	const op = "session.Parse"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// Cookie возвращает HttpOnly cookie с сессионным токеном.
func (m *Maker) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie возвращает cookie, немедленно удаляющую сессию у клиента.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
}
