package models

// TrialView — представление подписки для рендера: все производные поля
// (статус, оставшиеся дни, строка цены) уже вычислены. Числовое значение
// цены остаётся источником истины, строка Price выводится из него,
// а не наоборот.
type TrialView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"statusLabel"`
	DaysLeft    int     `json:"daysLeft"`
	ExpiryDate  string  `json:"expiryDate"`
	Price       string  `json:"price"`
	CancelURL   *string `json:"cancelUrl,omitempty"`
}
