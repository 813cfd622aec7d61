package models

import "time"

// ProviderStatus - статус занятости юриста.
type ProviderStatus string

const (
	AvailableProvider ProviderStatus = "available" // Юрист свободен
	ReservedProvider  ProviderStatus = "reserved"  // Юрист выполняет работу
)

// Provider представляет модель юриста.
type Provider struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    ProviderStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ProviderProfile - юрист вместе с его рейтингом.
type ProviderProfile struct {
	Provider
	StarRating float64 `json:"starRating"`
	RatingNum  int     `json:"ratingNum"`
}

// ProviderRequest представляет структуру запроса для регистрации юриста.
type ProviderRequest struct {
	Name string `json:"name"`
}
