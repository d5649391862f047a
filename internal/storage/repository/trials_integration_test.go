package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
)

func TestStorage_CreateTrial(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "create@example.com")

	expiry := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	trial := mustTrial(t, userUID, "Netflix", expiry)
	price := decimal.NewFromFloat(15.49)
	trial.RenewalPrice = &price

	gotID, err := storage.CreateTrial(context.Background(), trial)
	require.NoError(t, err)
	assert.Equal(t, trial.ID, gotID)

	// Тот же пользователь, сервис и дата — дубликат.
	dup := mustTrial(t, userUID, "Netflix", expiry)
	_, err = storage.CreateTrial(context.Background(), dup)
	require.ErrorIs(t, err, ErrTrialExists)

	// Другая дата окончания — уже не дубликат.
	other := mustTrial(t, userUID, "Netflix", expiry.AddDate(0, 1, 0))
	_, err = storage.CreateTrial(context.Background(), other)
	require.NoError(t, err)
}

func TestStorage_ReadTrial(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "read@example.com")
	otherUID := factory.CreateUser(t, "other@example.com")

	expiry := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	id := factory.CreateTrial(t, userUID, "Spotify", expiry, "confirmed")

	got, err := storage.ReadTrial(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, "Spotify", got.ServiceName)
	assert.Equal(t, trialstatus.LifecycleConfirmed, got.Lifecycle)
	assert.Nil(t, got.RenewalPrice)
	assert.Nil(t, got.CancelURL)

	// Чужая подписка недоступна.
	_, err = storage.ReadTrial(context.Background(), otherUID, id)
	require.ErrorIs(t, err, ErrTrialNotFound)

	_, err = storage.ReadTrial(context.Background(), userUID, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrTrialNotFound)
}

func TestStorage_UpdateTrial(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "update@example.com")

	expiry := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	id := factory.CreateTrial(t, userUID, "Spotify", expiry, "detected")

	updated := models.Trial{
		ServiceName: "Spotify Premium",
		ExpiryDate:  expiry.AddDate(0, 0, 14),
		Lifecycle:   trialstatus.LifecycleCanceled,
		Category:    "Music",
		Icon:        "🎵",
	}

	count, err := storage.UpdateTrial(context.Background(), updated, userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := storage.ReadTrial(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, "Spotify Premium", got.ServiceName)
	assert.Equal(t, trialstatus.LifecycleCanceled, got.Lifecycle)

	// Несуществующий ID — ноль изменённых строк, без ошибки.
	count, err = storage.UpdateTrial(context.Background(), updated, userUID,
		"00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_RemoveTrial(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "remove@example.com")

	expiry := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	id := factory.CreateTrial(t, userUID, "Spotify", expiry, "detected")

	count, err := storage.RemoveTrial(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Повторное удаление — ноль строк.
	count, err = storage.RemoveTrial(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_ListTrials(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "list@example.com")
	otherUID := factory.CreateUser(t, "other-list@example.com")

	base := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateTrial(t, userUID, "Later", base.AddDate(0, 0, 20), "detected")
	factory.CreateTrial(t, userUID, "Sooner", base, "detected")
	factory.CreateTrial(t, otherUID, "Foreign", base, "detected")

	got, err := storage.ListTrials(context.Background(), userUID)
	require.NoError(t, err)

	// Только свои, по возрастанию даты окончания.
	require.Len(t, got, 2)
	assert.Equal(t, "Sooner", got[0].ServiceName)
	assert.Equal(t, "Later", got[1].ServiceName)

	// Пустая коллекция — не ошибка.
	empty, err := storage.ListTrials(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_FindTrialsExpiringIn(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := factory.CreateUser(t, "reminder@example.com")

	target := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 3)
	factory.CreateTrial(t, userUID, "Netflix", target, "detected")
	factory.CreateTrial(t, userUID, "Spotify", target, "confirmed")
	// Отменённая не попадает в напоминания.
	factory.CreateTrial(t, userUID, "Disney+", target, "canceled")
	// Другая дата не попадает в окно.
	factory.CreateTrial(t, userUID, "Notion", target.AddDate(0, 0, 5), "detected")

	got, err := storage.FindTrialsExpiringIn(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "reminder@example.com", r.Email)
		assert.Contains(t, []string{"Netflix", "Spotify"}, r.ServiceName)
	}
}

func TestStorage_UpsertUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	picture := "https://example.com/a.png"
	first, err := storage.UpsertUser(context.Background(), models.User{
		UID:       "11111111-1111-1111-1111-111111111111",
		Email:     "upsert@example.com",
		Name:      "First Name",
		Picture:   &picture,
		Provider:  "google",
		AlertDays: "5,3,1",
	})
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", first.UID)

	// Повторный вход обновляет имя, но сохраняет uid.
	second, err := storage.UpsertUser(context.Background(), models.User{
		UID:       "22222222-2222-2222-2222-222222222222",
		Email:     "upsert@example.com",
		Name:      "Second Name",
		Provider:  "google",
		AlertDays: "5,3,1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.UID, second.UID)
	assert.Equal(t, "Second Name", second.Name)

	got, err := storage.ReadUserByUID(context.Background(), first.UID)
	require.NoError(t, err)
	assert.Equal(t, "upsert@example.com", got.Email)

	_, err = storage.ReadUserByUID(context.Background(), "33333333-3333-3333-3333-333333333333")
	require.ErrorIs(t, err, ErrUserNotFound)
}
