// Package normalize преобразует разнородные внешние документы подписок
// в каноническую модель Trial. Нормализация — единственная граница,
// на которой допускаются необязательные и дублирующиеся поля внешних
// форматов; дальше по системе ходит только каноническая форма.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freefromtrial/backend/internal/lib/datemath"
	"github.com/freefromtrial/backend/internal/lib/icons"
	"github.com/freefromtrial/backend/internal/lib/sl"
	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
)

// ValidationError описывает некорректное поле внешнего документа.
// Запись с такой ошибкой отбрасывается целиком, остальная коллекция
// не затрагивается.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// Normalize преобразует внешний документ в каноническую модель Trial.
//
// Правила:
//   - serviceName обязателен, endDate обязателен и должен парситься;
//   - renewalPrice, если задан, неотрицателен; числовое значение остаётся
//     источником истины, строка для отображения выводится при рендере;
//   - cancelUrl передаётся как есть; пустая строка и заглушка "#"
//     трактуются как отсутствие ссылки;
//   - status по умолчанию detected, category — из таблицы известных
//     сервисов либо значение по умолчанию.
func Normalize(doc models.RawTrialDoc) (models.Trial, error) {
	name := strings.TrimSpace(doc.ServiceName)
	if name == "" {
		return models.Trial{}, &ValidationError{Field: "serviceName", Reason: "is required"}
	}

	expiry, err := datemath.ParseDate(doc.EndDate)
	if err != nil {
		return models.Trial{}, &ValidationError{Field: "endDate", Reason: fmt.Sprintf("unparseable date %q", doc.EndDate)}
	}

	var price *decimal.Decimal
	if doc.RenewalPrice != nil {
		if *doc.RenewalPrice < 0 {
			return models.Trial{}, &ValidationError{Field: "renewalPrice", Reason: "must be non-negative"}
		}
		d := decimal.NewFromFloat(*doc.RenewalPrice)
		price = &d
	}

	var cancelURL *string
	if doc.CancelURL != nil {
		if url := strings.TrimSpace(*doc.CancelURL); url != "" && url != "#" {
			cancelURL = &url
		}
	}

	category := strings.TrimSpace(doc.Category)
	if category == "" {
		category = icons.CategoryFor(name)
	}

	return models.Trial{
		ID:           doc.ID,
		UserUID:      doc.UserUID,
		ServiceName:  name,
		ExpiryDate:   expiry,
		RenewalPrice: price,
		CancelURL:    cancelURL,
		Lifecycle:    trialstatus.ParseLifecycle(doc.Status),
		Category:     category,
		Icon:         icons.Pick(name),
	}, nil
}

// NormalizeAll нормализует пакет документов. Некорректные записи
// пропускаются с записью в лог — один плохой документ никогда не роняет
// всю коллекцию.
func NormalizeAll(log *slog.Logger, docs []models.RawTrialDoc) []models.Trial {
	result := make([]models.Trial, 0, len(docs))
	for _, doc := range docs {
		trial, err := Normalize(doc)
		if err != nil {
			log.Warn("skipping malformed trial document",
				slog.String("id", doc.ID), sl.Err(err))
			continue
		}
		result = append(result, trial)
	}
	return result
}
