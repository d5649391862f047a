// Package aggregate реализует движок агрегации пробных подписок:
// счётчики по статусам, списки срочных и ближайших подписок, сумму
// сэкономленных денег и фильтрацию полного списка.
//
// Все функции — чистые вычисления над снимком коллекции: входные срезы
// не изменяются, текущее время передаётся явно, повторный вызов с теми же
// входами даёт тот же результат. Каждая функция пересчитывается независимо
// от остальных.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freefromtrial/backend/internal/lib/datemath"
	"github.com/freefromtrial/backend/internal/lib/trialstatus"
	"github.com/freefromtrial/backend/internal/models"
)

// UpcomingLimit — максимальный размер списка ближайших подписок.
const UpcomingLimit = 5

// FilterAll — значение фильтра статуса, означающее отсутствие фильтрации.
const FilterAll = "all"

// StatusOf возвращает отображаемый статус подписки на момент now.
func StatusOf(t models.Trial, now time.Time) trialstatus.Status {
	return trialstatus.Classify(t.Lifecycle, datemath.DaysUntil(t.ExpiryDate, now))
}

// Counts — счётчики подписок по статусам.
type Counts struct {
	Active    int `json:"active"`
	Urgent    int `json:"urgent"`
	Cancelled int `json:"cancelled"`
}

// CountByStatus считает активные, срочные и отменённые подписки.
// Активные — все, кроме отменённых.
func CountByStatus(trials []models.Trial, now time.Time) Counts {
	var c Counts
	for _, t := range trials {
		switch StatusOf(t, now) {
		case trialstatus.StatusCancelled:
			c.Cancelled++
		case trialstatus.StatusUrgent:
			c.Urgent++
		}
	}
	c.Active = len(trials) - c.Cancelled
	return c
}

// TotalSavings возвращает сумму цен продления по отменённым подпискам.
// Отсутствующая цена считается нулём. В сумму входят только отменённые
// подписки: это деньги, которые больше не будут списаны.
func TotalSavings(trials []models.Trial, now time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range trials {
		if StatusOf(t, now) != trialstatus.StatusCancelled {
			continue
		}
		if t.RenewalPrice != nil {
			sum = sum.Add(*t.RenewalPrice)
		}
	}
	return sum
}

// UrgentList возвращает подписки со статусом urgent или warning
// в исходном порядке, без пересортировки.
func UrgentList(trials []models.Trial, now time.Time) []models.Trial {
	result := make([]models.Trial, 0)
	for _, t := range trials {
		switch StatusOf(t, now) {
		case trialstatus.StatusUrgent, trialstatus.StatusWarning:
			result = append(result, t)
		}
	}
	return result
}

// UpcomingList возвращает не более UpcomingLimit неотменённых подписок,
// отсортированных по возрастанию оставшихся дней. Сортировка стабильная:
// при равенстве дней выигрывает та, что раньше в исходном порядке.
func UpcomingList(trials []models.Trial, now time.Time) []models.Trial {
	result := make([]models.Trial, 0)
	for _, t := range trials {
		if StatusOf(t, now) != trialstatus.StatusCancelled {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return datemath.DaysUntil(result[i].ExpiryDate, now) <
			datemath.DaysUntil(result[j].ExpiryDate, now)
	})
	if len(result) > UpcomingLimit {
		result = result[:UpcomingLimit]
	}
	return result
}

// FilteredList возвращает подписки, отфильтрованные по статусу и поисковой
// строке. Пустой фильтр и FilterAll отключают фильтрацию по статусу; поиск
// идёт по названию сервиса и категории без учёта регистра. Пустой результат —
// ожидаемый исход, не ошибка.
func FilteredList(trials []models.Trial, now time.Time, statusFilter, search string) []models.Trial {
	result := make([]models.Trial, 0, len(trials))
	search = strings.ToLower(strings.TrimSpace(search))
	for _, t := range trials {
		if statusFilter != "" && statusFilter != FilterAll &&
			string(StatusOf(t, now)) != statusFilter {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.ServiceName), search) &&
			!strings.Contains(strings.ToLower(t.Category), search) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// FormatPrice возвращает строку цены для отображения. Отсутствующая цена
// отображается как "Unknown"; восстанавливать число из этой строки нельзя.
func FormatPrice(price *decimal.Decimal) string {
	if price == nil {
		return "Unknown"
	}
	return "$" + price.StringFixed(2) + "/month"
}

// View строит представление подписки для рендера на момент now.
func View(t models.Trial, now time.Time) models.TrialView {
	status := StatusOf(t, now)
	return models.TrialView{
		ID:          t.ID,
		Name:        t.ServiceName,
		Icon:        t.Icon,
		Category:    t.Category,
		Status:      string(status),
		StatusLabel: status.Label(),
		DaysLeft:    datemath.DaysUntil(t.ExpiryDate, now),
		ExpiryDate:  datemath.FormatDate(t.ExpiryDate.Format("2006-01-02")),
		Price:       FormatPrice(t.RenewalPrice),
		CancelURL:   t.CancelURL,
	}
}

// Views строит представления для списка подписок, сохраняя порядок.
func Views(trials []models.Trial, now time.Time) []models.TrialView {
	views := make([]models.TrialView, 0, len(trials))
	for _, t := range trials {
		views = append(views, View(t, now))
	}
	return views
}
