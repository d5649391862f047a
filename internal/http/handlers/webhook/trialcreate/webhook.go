// Package trialcreate реализует приём вебхуков о найденных пробных
// подписках от внешнего сканера почты. Запрос аутентифицируется общим
// секретом в заголовке X-Shared-Secret.
package trialcreate

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/freefromtrial/backend/internal/http/response"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/models"
	"github.com/freefromtrial/backend/internal/normalize"
	"github.com/freefromtrial/backend/internal/storage/repository"
)

// Имя заголовка с общим секретом вебхука.
const sharedSecretHeader = "X-Shared-Secret"

// Service описывает интерфейс приёма внешнего документа подписки.
type Service interface {
	Ingest(ctx context.Context, doc models.RawTrialDoc) (*models.Trial, error)
}

// Handler управляет HTTP-запросами вебхука создания подписок.
type Handler struct {
	log          *slog.Logger
	service      Service
	sharedSecret string
}

// New создает новый Handler с переданными логгером, сервисом и секретом.
func New(log *slog.Logger, service Service, sharedSecret string) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		sharedSecret: sharedSecret,
	}
}

// ServeHTTP godoc
// @Summary Вебхук создания подписки
// @Description Принимает документ подписки от внешнего сканера. Запрос должен содержать заголовок X-Shared-Secret.
// @Tags Webhooks
// @Accept  json
// @Produce  json
// @Param request body models.RawTrialDoc true "Документ подписки"
// @Success 200 {object} map[string]any "Созданная запись"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 409 {object} response.ErrorResponse "Дубликат подписки"
// @Failure 422 {object} response.ErrorResponse "Некорректный документ"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /webhooks/trials [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.trialcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	secret := r.Header.Get(sharedSecretHeader)
	if h.sharedSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.sharedSecret)) != 1 {
		log.Error("webhook secret mismatch")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var doc models.RawTrialDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	trial, err := h.service.Ingest(r.Context(), doc)
	if err != nil {
		var vErr *normalize.ValidationError
		switch {
		case errors.As(err, &vErr):
			log.Error("invalid webhook document", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(vErr.Error()))
		case errors.Is(err, repository.ErrTrialExists):
			log.Error("duplicate trial from webhook", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("trial already exists"))
		default:
			log.Error("failed to ingest trial", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not save trial"))
		}
		return
	}

	log.Info("webhook trial saved", slog.String("id", trial.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": trial.ID,
	}))
}
