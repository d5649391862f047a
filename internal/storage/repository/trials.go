package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/freefromtrial/backend/internal/lib/datemath"
	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
)

// CreateTrial вставляет новую запись подписки и возвращает её ID.
// Дубликат (тот же пользователь, сервис и дата окончания) возвращает
// ErrTrialExists.
func (s *Storage) CreateTrial(ctx context.Context, t models.Trial) (string, error) {
	const op = "storage.CreateTrial"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO trials (id, user_uid, service_name, expiry_date, renewal_price,
			      cancel_url, lifecycle, category, icon, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		t.ID, t.UserUID, t.ServiceName, t.ExpiryDate, nullPrice(t.RenewalPrice),
		t.CancelURL, string(t.Lifecycle), t.Category, t.Icon).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrTrialExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadTrial возвращает подписку пользователя по её ID.
func (s *Storage) ReadTrial(ctx context.Context, userUID, id string) (*models.Trial, error) {
	const op = "storage.ReadTrial"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, service_name, expiry_date, renewal_price,
				cancel_url, lifecycle, category, icon, created_at, updated_at
			  FROM trials WHERE user_uid = $1 AND id = $2`
	row := s.DB.QueryRowContext(ctx, query, userUID, id)

	result, err := scanTrial(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrTrialNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTrial обновляет данные подписки по её ID и возвращает количество
// изменённых строк.
func (s *Storage) UpdateTrial(ctx context.Context, t models.Trial, userUID, id string) (int, error) {
	const op = "storage.UpdateTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE trials
			  SET service_name = $1, expiry_date = $2, renewal_price = $3,
			      cancel_url = $4, lifecycle = $5, category = $6, icon = $7,
			      updated_at = now()
			  WHERE user_uid = $8 AND id = $9`
	result, err := s.DB.ExecContext(ctx, query,
		t.ServiceName, t.ExpiryDate, nullPrice(t.RenewalPrice),
		t.CancelURL, string(t.Lifecycle), t.Category, t.Icon, userUID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveTrial удаляет подписку пользователя по ID и возвращает количество
// удалённых строк.
func (s *Storage) RemoveTrial(ctx context.Context, userUID, id string) (int, error) {
	const op = "storage.RemoveTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM trials WHERE user_uid = $1 AND id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListTrials возвращает все подписки пользователя, отсортированные
// по дате окончания.
func (s *Storage) ListTrials(ctx context.Context, userUID string) ([]models.Trial, error) {
	const op = "storage.ListTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, service_name, expiry_date, renewal_price,
				cancel_url, lifecycle, category, icon, created_at, updated_at
			  FROM trials
			  WHERE user_uid = $1
			  ORDER BY expiry_date, created_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []models.Trial
	for rows.Next() {
		item, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindTrialsExpiringIn возвращает данные для напоминаний о подписках,
// истекающих ровно через days дней. Отменённые и истекшие не учитываются.
func (s *Storage) FindTrialsExpiringIn(ctx context.Context, days int) ([]models.TrialReminder, error) {
	const op = "storage.FindTrialsExpiringIn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, u.name, t.service_name, t.expiry_date, t.cancel_url
			  FROM trials t
			  JOIN users u ON u.uid = t.user_uid
			  WHERE t.lifecycle IN ($1, $2)
			    AND t.expiry_date = CURRENT_DATE + $3::int
			  ORDER BY u.email`
	rows, err := s.DB.QueryContext(ctx, query,
		string(trialstatus.LifecycleDetected), string(trialstatus.LifecycleConfirmed), days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	now := time.Now()
	var result []models.TrialReminder
	for rows.Next() {
		var item models.TrialReminder
		if err := rows.Scan(&item.Email, &item.Name, &item.ServiceName,
			&item.ExpiryDate, &item.CancelURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.DaysLeft = datemath.DaysUntil(item.ExpiryDate, now)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrial(row rowScanner) (*models.Trial, error) {
	var t models.Trial
	var price decimal.NullDecimal
	var lifecycle string
	if err := row.Scan(&t.ID, &t.UserUID, &t.ServiceName, &t.ExpiryDate, &price,
		&t.CancelURL, &lifecycle, &t.Category, &t.Icon, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if price.Valid {
		t.RenewalPrice = &price.Decimal
	}
	t.Lifecycle = trialstatus.Lifecycle(lifecycle)
	return &t, nil
}

func nullPrice(price *decimal.Decimal) decimal.NullDecimal {
	if price == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *price, Valid: true}
}
