package models

import "time"

// User представляет пользователя системы. Учётная запись создаётся
// и обновляется при входе через внешнего OAuth-провайдера.
type User struct {
	UID       string     // Уникальный идентификатор пользователя
	Email     string     // Электронная почта (уникальная)
	Name      string     // Отображаемое имя из профиля провайдера
	Picture   *string    // Ссылка на аватар, nil — отсутствует
	Provider  string     // Провайдер аутентификации, например "google"
	AlertDays string     // Дни напоминаний до истечения, например "5,3,1"
	CreatedAt time.Time
	UpdatedAt time.Time
}
