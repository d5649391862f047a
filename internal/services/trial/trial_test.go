package trial

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
	"github.com/freefromtrial/backend/internal/normalize"
	"github.com/freefromtrial/backend/internal/storage/repository"
)

// MockRepository реализует интерфейс Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTrial(ctx context.Context, t models.Trial) (string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ReadTrial(ctx context.Context, userUID, id string) (*models.Trial, error) {
	args := m.Called(ctx, userUID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trial), args.Error(1)
}

func (m *MockRepository) UpdateTrial(ctx context.Context, t models.Trial, userUID, id string) (int, error) {
	args := m.Called(ctx, t, userUID, id)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) RemoveTrial(ctx context.Context, userUID, id string) (int, error) {
	args := m.Called(ctx, userUID, id)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListTrials(ctx context.Context, userUID string) ([]models.Trial, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trial), args.Error(1)
}

// MockCache реализует интерфейс Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("успешное создание", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		repo.On("CreateTrial", mock.Anything, mock.AnythingOfType("models.Trial")).
			Return("some-id", nil)
		cache.On("Invalidate", mock.Anything, "trials:user-1").Return(nil)

		price := 15.49
		trial, err := svc.Create(ctx, "user-1", models.CreateTrialRequest{
			ServiceName:  "Netflix",
			EndDate:      "2030-07-01",
			CancelURL:    "https://netflix.com/cancel",
			RenewalPrice: &price,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, trial.ID)
		assert.Equal(t, "user-1", trial.UserUID)
		assert.Equal(t, trialstatus.LifecycleDetected, trial.Lifecycle)
		assert.Equal(t, "🎬", trial.Icon)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("плохая дата возвращает ValidationError", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		_, err := svc.Create(ctx, "user-1", models.CreateTrialRequest{
			ServiceName: "Netflix",
			EndDate:     "someday",
		})

		var vErr *normalize.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "endDate", vErr.Field)
		repo.AssertNotCalled(t, "CreateTrial")
	})

	t.Run("дубликат пробрасывается как есть", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		repo.On("CreateTrial", mock.Anything, mock.AnythingOfType("models.Trial")).
			Return("", repository.ErrTrialExists)

		_, err := svc.Create(ctx, "user-1", models.CreateTrialRequest{
			ServiceName: "Netflix",
			EndDate:     "2030-07-01",
		})

		require.ErrorIs(t, err, repository.ErrTrialExists)
	})
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("успешный приём документа", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		repo.On("CreateTrial", mock.Anything, mock.AnythingOfType("models.Trial")).
			Return("some-id", nil)
		cache.On("Invalidate", mock.Anything, "trials:user-7").Return(nil)

		trial, err := svc.Ingest(ctx, models.RawTrialDoc{
			UserUID:     "user-7",
			ServiceName: "Spotify",
			EndDate:     "2030-07-01",
			Status:      "detected",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, trial.ID)
		assert.Equal(t, "user-7", trial.UserUID)
		repo.AssertExpectations(t)
	})

	t.Run("документ без userId отклоняется", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		_, err := svc.Ingest(ctx, models.RawTrialDoc{
			ServiceName: "Spotify",
			EndDate:     "2030-07-01",
		})

		var vErr *normalize.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "userId", vErr.Field)
		repo.AssertNotCalled(t, "CreateTrial")
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("промах кеша загружает из хранилища и кеширует", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		trials := []models.Trial{{ID: "1", ServiceName: "Netflix"}}
		cache.On("Get", mock.Anything, "trials:user-1", mock.Anything).Return(false, nil)
		repo.On("ListTrials", mock.Anything, "user-1").Return(trials, nil)
		cache.On("Set", mock.Anything, "trials:user-1", trials, listCacheTTL).Return(nil)

		got, err := svc.List(ctx, "user-1")

		require.NoError(t, err)
		assert.Equal(t, trials, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("ошибка кеша не мешает загрузке", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		trials := []models.Trial{{ID: "1"}}
		cache.On("Get", mock.Anything, "trials:user-1", mock.Anything).
			Return(false, errors.New("redis down"))
		repo.On("ListTrials", mock.Anything, "user-1").Return(trials, nil)
		cache.On("Set", mock.Anything, "trials:user-1", trials, listCacheTTL).
			Return(errors.New("redis down"))

		got, err := svc.List(ctx, "user-1")

		require.NoError(t, err)
		assert.Equal(t, trials, got)
	})

	t.Run("ошибка хранилища возвращается", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		cache.On("Get", mock.Anything, "trials:user-1", mock.Anything).Return(false, nil)
		repo.On("ListTrials", mock.Anything, "user-1").Return(nil, errors.New("db error"))

		_, err := svc.List(ctx, "user-1")

		require.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	existing := &models.Trial{
		ID:          "trial-1",
		UserUID:     "user-1",
		ServiceName: "Netflix",
		ExpiryDate:  time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC),
		Lifecycle:   trialstatus.LifecycleDetected,
		Category:    "Entertainment",
		Icon:        "🎬",
	}

	t.Run("отметка об отмене сохраняет запись", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		copyExisting := *existing
		repo.On("ReadTrial", mock.Anything, "user-1", "trial-1").Return(&copyExisting, nil)
		repo.On("UpdateTrial", mock.Anything, mock.AnythingOfType("models.Trial"), "user-1", "trial-1").
			Return(1, nil)
		cache.On("Invalidate", mock.Anything, "trials:user-1").Return(nil)

		status := "canceled"
		updated, err := svc.Update(ctx, "user-1", "trial-1", models.UpdateTrialRequest{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, trialstatus.LifecycleCanceled, updated.Lifecycle)
		assert.Equal(t, "Netflix", updated.ServiceName)
	})

	t.Run("смена названия пересчитывает иконку", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		copyExisting := *existing
		repo.On("ReadTrial", mock.Anything, "user-1", "trial-1").Return(&copyExisting, nil)
		repo.On("UpdateTrial", mock.Anything, mock.AnythingOfType("models.Trial"), "user-1", "trial-1").
			Return(1, nil)
		cache.On("Invalidate", mock.Anything, "trials:user-1").Return(nil)

		name := "Spotify"
		updated, err := svc.Update(ctx, "user-1", "trial-1", models.UpdateTrialRequest{ServiceName: &name})

		require.NoError(t, err)
		assert.Equal(t, "🎵", updated.Icon)
		assert.Equal(t, "Music", updated.Category)
	})

	t.Run("плохая дата возвращает ValidationError", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		copyExisting := *existing
		repo.On("ReadTrial", mock.Anything, "user-1", "trial-1").Return(&copyExisting, nil)

		endDate := "someday"
		_, err := svc.Update(ctx, "user-1", "trial-1", models.UpdateTrialRequest{EndDate: &endDate})

		var vErr *normalize.ValidationError
		require.ErrorAs(t, err, &vErr)
		repo.AssertNotCalled(t, "UpdateTrial")
	})

	t.Run("ноль изменённых строк означает not found", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		svc := New(repo, cache, testLogger())

		copyExisting := *existing
		repo.On("ReadTrial", mock.Anything, "user-1", "trial-1").Return(&copyExisting, nil)
		repo.On("UpdateTrial", mock.Anything, mock.AnythingOfType("models.Trial"), "user-1", "trial-1").
			Return(0, nil)

		status := "canceled"
		_, err := svc.Update(ctx, "user-1", "trial-1", models.UpdateTrialRequest{Status: &status})

		require.ErrorIs(t, err, repository.ErrTrialNotFound)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRepository)
	cache := new(MockCache)
	svc := New(repo, cache, testLogger())

	repo.On("RemoveTrial", mock.Anything, "user-1", "trial-1").Return(1, nil)
	cache.On("Invalidate", mock.Anything, "trials:user-1").Return(nil)

	count, err := svc.Remove(ctx, "user-1", "trial-1")

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
