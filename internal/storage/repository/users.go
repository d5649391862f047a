package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freefromtrial/backend/internal/models"
)

// UpsertUser создаёт пользователя или обновляет имя и аватар существующего
// по email (данные приходят из профиля OAuth-провайдера). Возвращает
// актуальную запись.
func (s *Storage) UpsertUser(ctx context.Context, u models.User) (*models.User, error) {
	const op = "storage.UpsertUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, name, picture, provider, alert_days, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			  ON CONFLICT (email) DO UPDATE
			  SET name = EXCLUDED.name, picture = EXCLUDED.picture, updated_at = now()
			  RETURNING uid, email, name, picture, provider, alert_days, created_at, updated_at`
	row := s.DB.QueryRowContext(ctx, query,
		u.UID, u.Email, u.Name, u.Picture, u.Provider, u.AlertDays)

	var result models.User
	if err := row.Scan(&result.UID, &result.Email, &result.Name, &result.Picture,
		&result.Provider, &result.AlertDays, &result.CreatedAt, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ReadUserByUID возвращает пользователя по его идентификатору.
func (s *Storage) ReadUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.ReadUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, picture, provider, alert_days, created_at, updated_at
			  FROM users WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.User
	if err := row.Scan(&result.UID, &result.Email, &result.Name, &result.Picture,
		&result.Provider, &result.AlertDays, &result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
