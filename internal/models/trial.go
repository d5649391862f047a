// Package models содержит доменные структуры пробных подписок и пользователей,
// а также вспомогательные типы для приёма данных из внешних источников
// (JSON-запросы и документы внешних бэкендов).
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/freefromtrial/backend/internal/lib/trialstatus"
)

// Trial — каноническая модель пробной подписки, используемая в бизнес-логике
// и хранилище. RenewalPrice равный nil означает "цена неизвестна",
// CancelURL равный nil — "ссылка на отмену неизвестна". Оба отсутствия —
// осмысленные состояния, их нельзя подменять строками-заглушками вроде "#".
type Trial struct {
	ID           string                // Идентификатор записи, назначается хранилищем
	UserUID      string                // Идентификатор владельца
	ServiceName  string                // Название сервиса
	ExpiryDate   time.Time             // Дата окончания текущего периода
	RenewalPrice *decimal.Decimal      // Цена продления в месяц, nil — неизвестна
	CancelURL    *string               // Ссылка на отмену, nil — отсутствует
	Lifecycle    trialstatus.Lifecycle // Авторитетное состояние из хранилища
	Category     string                // Категория сервиса
	Icon         string                // Иконка для отображения
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RawTrialDoc используется для приёма документа подписки из внешнего
// источника (вебхук, внешний API) до нормализации в Trial.
// Дата приходит строкой, чтобы её можно было валидировать вручную.
type RawTrialDoc struct {
	ID           string   `json:"_id,omitempty"`          // Идентификатор документа
	UserUID      string   `json:"userId,omitempty"`       // Идентификатор владельца
	ServiceName  string   `json:"serviceName"`            // Название сервиса
	EndDate      string   `json:"endDate"`                // Дата окончания, ISO-строка
	CancelURL    *string  `json:"cancelUrl,omitempty"`    // Ссылка на отмену
	RenewalPrice *float64 `json:"renewalPrice,omitempty"` // Цена продления
	Status       string   `json:"status,omitempty"`       // detected|confirmed|canceled|expired
	Category     string   `json:"category,omitempty"`     // Категория
}

// CreateTrialRequest используется для приёма данных из JSON-запроса
// на создание подписки.
type CreateTrialRequest struct {
	ServiceName  string   `json:"serviceName" validate:"required"`              // Название сервиса
	EndDate      string   `json:"endDate" validate:"required"`                  // Дата окончания, YYYY-MM-DD
	CancelURL    string   `json:"cancelUrl,omitempty" validate:"omitempty,url"` // Ссылка на отмену (опционально)
	RenewalPrice *float64 `json:"renewalPrice,omitempty" validate:"omitempty,gte=0"`
}

// UpdateTrialRequest используется для приёма частичного обновления подписки
// (PATCH). Поля nil не изменяются.
type UpdateTrialRequest struct {
	ServiceName  *string  `json:"serviceName,omitempty" validate:"omitempty,min=1"`
	EndDate      *string  `json:"endDate,omitempty"`
	CancelURL    *string  `json:"cancelUrl,omitempty" validate:"omitempty,url"`
	RenewalPrice *float64 `json:"renewalPrice,omitempty" validate:"omitempty,gte=0"`
	Status       *string  `json:"status,omitempty" validate:"omitempty,oneof=detected confirmed canceled expired"`
}

// TrialReminder — данные для письма-напоминания об истекающей подписке.
type TrialReminder struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ServiceName string    `json:"serviceName"`
	ExpiryDate  time.Time `json:"expiryDate"`
	DaysLeft    int       `json:"daysLeft"`
	CancelURL   *string   `json:"cancelUrl,omitempty"`
}
