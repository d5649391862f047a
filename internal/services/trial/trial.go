// Package trial содержит бизнес-логику управления пробными подписками:
// создание, чтение, частичное обновление, удаление и загрузку списка
// с кешированием. После каждой мутации кеш списка инвалидируется,
// а вызывающая сторона перечитывает коллекцию целиком — частичных
// слияний снимка не существует.
package trial

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freefromtrial/backend/internal/cache"
	"github.com/freefromtrial/backend/internal/lib/datemath"
	"github.com/freefromtrial/backend/internal/lib/icons"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
	"github.com/freefromtrial/backend/internal/normalize"
	"github.com/freefromtrial/backend/internal/storage/repository"
)

// Время жизни кешированного списка подписок.
const listCacheTTL = 5 * time.Minute

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// CreateTrial добавляет новую подписку и возвращает её ID.
	CreateTrial(ctx context.Context, t models.Trial) (string, error)
	// ReadTrial возвращает подписку пользователя по ID.
	ReadTrial(ctx context.Context, userUID, id string) (*models.Trial, error)
	// UpdateTrial обновляет подписку и возвращает количество изменённых строк.
	UpdateTrial(ctx context.Context, t models.Trial, userUID, id string) (int, error)
	// RemoveTrial удаляет подписку и возвращает количество удалённых строк.
	RemoveTrial(ctx context.Context, userUID, id string) (int, error)
	// ListTrials возвращает все подписки пользователя.
	ListTrials(ctx context.Context, userUID string) ([]models.Trial, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует бизнес-логику работы с подписками, включая кеширование.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую подписку пользователя. Данные запроса проходят
// через нормализатор: плохая дата или пустое название возвращают
// *normalize.ValidationError, дубликат — repository.ErrTrialExists.
func (s *Service) Create(ctx context.Context, userUID string, req models.CreateTrialRequest) (*models.Trial, error) {
	doc := models.RawTrialDoc{
		UserUID:      userUID,
		ServiceName:  req.ServiceName,
		EndDate:      req.EndDate,
		RenewalPrice: req.RenewalPrice,
	}
	if url := strings.TrimSpace(req.CancelURL); url != "" {
		doc.CancelURL = &url
	}

	trial, err := normalize.Normalize(doc)
	if err != nil {
		return nil, err
	}
	trial.ID = uuid.NewString()
	trial.Lifecycle = trialstatus.LifecycleDetected

	if _, err := s.repo.CreateTrial(ctx, trial); err != nil {
		return nil, err
	}
	s.log.Info("created new trial", slog.String("id", trial.ID))

	s.invalidateList(ctx, userUID)
	return &trial, nil
}

// Ingest принимает внешний документ подписки (вебхук) и сохраняет его
// как новую запись. Документ проходит ту же нормализацию, что и ручное
// создание; userId обязан присутствовать в самом документе.
func (s *Service) Ingest(ctx context.Context, doc models.RawTrialDoc) (*models.Trial, error) {
	if strings.TrimSpace(doc.UserUID) == "" {
		return nil, &normalize.ValidationError{Field: "userId", Reason: "is required"}
	}

	trial, err := normalize.Normalize(doc)
	if err != nil {
		return nil, err
	}
	if trial.ID == "" {
		trial.ID = uuid.NewString()
	}

	if _, err := s.repo.CreateTrial(ctx, trial); err != nil {
		return nil, err
	}
	s.log.Info("ingested trial from webhook", slog.String("id", trial.ID))

	s.invalidateList(ctx, trial.UserUID)
	return &trial, nil
}

// Read возвращает подписку пользователя по ID.
func (s *Service) Read(ctx context.Context, userUID, id string) (*models.Trial, error) {
	return s.repo.ReadTrial(ctx, userUID, id)
}

// List возвращает все подписки пользователя, используя кеш или хранилище.
func (s *Service) List(ctx context.Context, userUID string) ([]models.Trial, error) {
	cacheKey := cache.TrialsKey(userUID)

	var cached []models.Trial
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read trials from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	trials, err := s.repo.ListTrials(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, trials, listCacheTTL); err != nil {
		s.log.Warn("failed to cache trials", slog.String("key", cacheKey), sl.Err(err))
	}
	return trials, nil
}

// Update применяет частичное обновление подписки (PATCH-семантика):
// поля nil не изменяются. Перевод в lifecycle canceled — это отметка
// об отмене, запись при этом сохраняется.
func (s *Service) Update(ctx context.Context, userUID, id string, req models.UpdateTrialRequest) (*models.Trial, error) {
	existing, err := s.repo.ReadTrial(ctx, userUID, id)
	if err != nil {
		return nil, err
	}
	updated := *existing

	if req.ServiceName != nil {
		name := strings.TrimSpace(*req.ServiceName)
		if name == "" {
			return nil, &normalize.ValidationError{Field: "serviceName", Reason: "is required"}
		}
		updated.ServiceName = name
		updated.Icon = icons.Pick(name)
		if svc, ok := icons.Lookup(name); ok {
			updated.Category = svc.Category
		}
	}
	if req.EndDate != nil {
		expiry, err := datemath.ParseDate(*req.EndDate)
		if err != nil {
			return nil, &normalize.ValidationError{Field: "endDate", Reason: fmt.Sprintf("unparseable date %q", *req.EndDate)}
		}
		updated.ExpiryDate = expiry
	}
	if req.CancelURL != nil {
		if url := strings.TrimSpace(*req.CancelURL); url != "" && url != "#" {
			updated.CancelURL = &url
		} else {
			updated.CancelURL = nil
		}
	}
	if req.RenewalPrice != nil {
		if *req.RenewalPrice < 0 {
			return nil, &normalize.ValidationError{Field: "renewalPrice", Reason: "must be non-negative"}
		}
		price := decimal.NewFromFloat(*req.RenewalPrice)
		updated.RenewalPrice = &price
	}
	if req.Status != nil {
		updated.Lifecycle = trialstatus.ParseLifecycle(*req.Status)
	}

	count, err := s.repo.UpdateTrial(ctx, updated, userUID, id)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("trial %s: %w", id, repository.ErrTrialNotFound)
	}
	s.log.Info("updated trial", slog.String("id", id))

	s.invalidateList(ctx, userUID)
	return &updated, nil
}

// Remove удаляет подписку пользователя. Возвращает количество удалённых
// записей: 0 означает, что запись уже отсутствует.
func (s *Service) Remove(ctx context.Context, userUID, id string) (int, error) {
	count, err := s.repo.RemoveTrial(ctx, userUID, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("removed trial", slog.String("id", id), slog.Int("count", count))

	s.invalidateList(ctx, userUID)
	return count, nil
}

func (s *Service) invalidateList(ctx context.Context, userUID string) {
	cacheKey := cache.TrialsKey(userUID)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to invalidate trials cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
