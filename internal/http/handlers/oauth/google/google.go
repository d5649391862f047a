// Package google реализует вход через Google OAuth: редирект на страницу
// согласия и обработку callback с выпуском сессионной cookie.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/freefromtrial/backend/internal/config"
	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/session"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/models"
)

const (
	stateCookieName = "fft_oauth_state"
	userinfoURL     = "https://www.googleapis.com/oauth2/v2/userinfo"
	providerName    = "google"
	defaultAlerts   = "5,3,1"
)

// UserUpserter описывает интерфейс сохранения пользователя после входа.
type UserUpserter interface {
	UpsertUser(ctx context.Context, u models.User) (*models.User, error)
}

// Handler управляет обменом кодов авторизации Google на сессии приложения.
type Handler struct {
	log         *slog.Logger
	users       UserUpserter
	sessions    *session.Maker
	oauth       *oauth2.Config
	frontendURL string
	secure      bool
}

// New создает новый Handler с переданными логгером, хранилищем пользователей
// и настройками OAuth.
func New(log *slog.Logger, users UserUpserter, sessions *session.Maker, cfg *config.Config) *Handler {
	return &Handler{
		log:      log,
		users:    users,
		sessions: sessions,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		frontendURL: cfg.FrontendURL,
		secure:      cfg.SecureCookies,
	}
}

type userinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Start godoc
// @Summary Начало входа через Google
// @Description Ставит анти-CSRF state cookie и перенаправляет на страницу согласия Google.
// @Tags Auth
// @Success 307 "Редирект на Google"
// @Router /oauth/google [get]
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback godoc
// @Summary Callback Google OAuth
// @Description Обменивает код авторизации на профиль Google, создаёт или обновляет пользователя, ставит сессионную cookie и перенаправляет на фронтенд.
// @Tags Auth
// @Success 307 "Редирект на фронтенд"
// @Failure 400 {object} response.ErrorResponse "Некорректный state или код"
// @Failure 500 {object} response.ErrorResponse "Ошибка обмена кода или сохранения пользователя"
// @Router /oauth/google/callback [get]
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.oauth.google.Callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		log.Error("oauth state mismatch")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid oauth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		log.Error("authorization code is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("authorization code is missing"))
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Error("failed to exchange authorization code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete sign-in"))
		return
	}

	info, err := h.fetchUserinfo(r.Context(), token)
	if err != nil {
		log.Error("failed to fetch user profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete sign-in"))
		return
	}

	var picture *string
	if info.Picture != "" {
		picture = &info.Picture
	}
	user, err := h.users.UpsertUser(r.Context(), models.User{
		UID:       uuid.NewString(),
		Email:     info.Email,
		Name:      info.Name,
		Picture:   picture,
		Provider:  providerName,
		AlertDays: defaultAlerts,
	})
	if err != nil {
		log.Error("failed to upsert user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete sign-in"))
		return
	}

	sessionToken, err := h.sessions.Issue(*user)
	if err != nil {
		log.Error("failed to issue session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete sign-in"))
		return
	}

	log.Info("user signed in", slog.String("uid", user.UID))
	http.SetCookie(w, h.sessions.Cookie(sessionToken))
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *Handler) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*userinfo, error) {
	const op = "handlers.oauth.google.fetchUserinfo"

	resp, err := h.oauth.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var info userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%s: profile has no email", op)
	}
	return &info, nil
}
