// Package icons содержит статическую таблицу известных сервисов
// для подбора иконки и категории по названию подписки.
package icons

import "strings"

// Service описывает известный сервис: подстрока для поиска,
// иконка и категория.
type Service struct {
	Match    string
	Icon     string
	Category string
}

// Значения по умолчанию, когда сервис не найден в таблице.
const (
	DefaultIcon     = "📱"
	DefaultCategory = "Subscription"
)

// KnownServices — упорядоченная таблица известных сервисов.
// Поиск идёт по подстроке без учёта регистра, выигрывает первое совпадение,
// поэтому порядок элементов значим.
var KnownServices = []Service{
	{Match: "netflix", Icon: "🎬", Category: "Entertainment"},
	{Match: "youtube", Icon: "📺", Category: "Entertainment"},
	{Match: "spotify", Icon: "🎵", Category: "Music"},
	{Match: "disney", Icon: "🏰", Category: "Entertainment"},
	{Match: "amazon", Icon: "📦", Category: "Shopping"},
	{Match: "apple", Icon: "🍎", Category: "Entertainment"},
	{Match: "notion", Icon: "📝", Category: "Productivity"},
	{Match: "adobe", Icon: "🎨", Category: "Software"},
	{Match: "chatgpt", Icon: "🤖", Category: "AI Tools"},
	{Match: "figma", Icon: "🎨", Category: "Software"},
	{Match: "canva", Icon: "🖼️", Category: "Software"},
}

// Lookup ищет сервис по названию подписки.
func Lookup(serviceName string) (Service, bool) {
	name := strings.ToLower(serviceName)
	for _, svc := range KnownServices {
		if strings.Contains(name, svc.Match) {
			return svc, true
		}
	}
	return Service{}, false
}

// Pick возвращает иконку для названия подписки или иконку по умолчанию.
func Pick(serviceName string) string {
	if svc, ok := Lookup(serviceName); ok {
		return svc.Icon
	}
	return DefaultIcon
}

// CategoryFor возвращает категорию для названия подписки
// или категорию по умолчанию.
func CategoryFor(serviceName string) string {
	if svc, ok := Lookup(serviceName); ok {
		return svc.Category
	}
	return DefaultCategory
}
