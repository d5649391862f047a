// Package repository реализует хранилище данных на основе PostgreSQL
// для пробных подписок и пользователей. Предоставляет методы создания,
// чтения, обновления и удаления записей, поиск истекающих подписок
// и работу с учётными записями.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища, на которые опираются обработчики
// при выборе HTTP-статуса.
var (
	// ErrTrialNotFound — запись не найдена или принадлежит другому пользователю.
	ErrTrialNotFound = errors.New("trial not found")
	// ErrTrialExists — дубликат: у пользователя уже есть такая подписка
	// с той же датой окончания.
	ErrTrialExists = errors.New("trial already exists")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'trials'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table trials missing or query error: %w", err)
	}
	return nil
}
