// Package trialstatus определяет жизненный цикл пробной подписки
// и чистую функцию классификации её отображаемого статуса.
//
// Lifecycle — авторитетное состояние записи из хранилища.
// Status — производный статус для интерфейса, пересчитываемый при каждом
// рендере из Lifecycle и количества оставшихся дней.
package trialstatus

// Lifecycle описывает состояние записи в хранилище.
type Lifecycle string

const (
	// LifecycleDetected — подписка обнаружена автоматически, не подтверждена.
	LifecycleDetected Lifecycle = "detected"
	// LifecycleConfirmed — подписка подтверждена пользователем.
	LifecycleConfirmed Lifecycle = "confirmed"
	// LifecycleCanceled — подписка отменена пользователем.
	LifecycleCanceled Lifecycle = "canceled"
	// LifecycleExpired — подписка истекла.
	LifecycleExpired Lifecycle = "expired"
)

// ParseLifecycle возвращает Lifecycle для строки из внешнего источника.
// Неизвестное или пустое значение трактуется как detected.
func ParseLifecycle(s string) Lifecycle {
	switch Lifecycle(s) {
	case LifecycleDetected, LifecycleConfirmed, LifecycleCanceled, LifecycleExpired:
		return Lifecycle(s)
	default:
		return LifecycleDetected
	}
}

// Status описывает отображаемый статус подписки.
type Status string

const (
	// StatusUrgent — подписка истекает в ближайшие дни.
	StatusUrgent Status = "urgent"
	// StatusWarning — до истечения осталась неделя или меньше.
	StatusWarning Status = "warning"
	// StatusSafe — до истечения ещё далеко.
	StatusSafe Status = "safe"
	// StatusCancelled — подписка отменена, истекла или просрочена.
	StatusCancelled Status = "cancelled"
)

// Пороговые значения в днях. Границы включаются в нижний класс:
// ровно 3 дня — urgent, ровно 7 — warning.
const (
	UrgentThresholdDays  = 3
	WarningThresholdDays = 7
)

// Classify возвращает отображаемый статус по состоянию записи и количеству
// оставшихся дней. Функция тотальна и не имеет побочных эффектов:
// для любых входов возвращается ровно один из четырёх статусов.
func Classify(lifecycle Lifecycle, daysRemaining int) Status {
	if lifecycle == LifecycleCanceled || lifecycle == LifecycleExpired {
		return StatusCancelled
	}
	switch {
	case daysRemaining < 0:
		return StatusCancelled
	case daysRemaining <= UrgentThresholdDays:
		return StatusUrgent
	case daysRemaining <= WarningThresholdDays:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// Label возвращает человеко-читаемую подпись статуса.
func (s Status) Label() string {
	switch s {
	case StatusUrgent:
		return "Expires soon!"
	case StatusWarning:
		return "Watch out"
	case StatusSafe:
		return "You're good"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}
