// Package datemath содержит чистые функции для работы с календарными датами:
// подсчёт оставшихся дней до даты и форматирование дат для отображения.
package datemath

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// Форматы дат, принимаемые от внешних источников.
var acceptedLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// DaysUntil возвращает количество дней до даты expiry относительно now,
// округлённое вверх. Результат знаковый: для дат в прошлом отрицательный.
func DaysUntil(expiry, now time.Time) int {
	diff := expiry.Sub(now)
	return int(math.Ceil(float64(diff) / float64(day)))
}

// ParseDate парсит дату из строки в формате ISO (только дата или дата-время).
// Нераспознанная строка возвращает ошибку — вызывающая сторона обязана
// обработать её явно, а не трактовать дату как "безопасную".
func ParseDate(s string) (time.Time, error) {
	const op = "datemath.ParseDate"
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unparseable date %q", op, s)
}

// FormatDate форматирует дату для отображения пользователю ("Jan 2, 2006").
// Нераспознанная строка возвращается без изменений: отображение
// никогда не должно падать на плохих данных.
func FormatDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
