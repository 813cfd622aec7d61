package models

import (
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// RatingEdge - последняя оценка, которую один юрист поставил другому.
type RatingEdge struct {
	FromProviderID string    `json:"fromProviderId"`
	ToProviderID   string    `json:"toProviderId"`
	Rating         int       `json:"rating"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RatingAggregate - средняя оценка юриста и число оценок.
type RatingAggregate struct {
	ProviderID string  `json:"providerId"`
	StarRating float64 `json:"starRating"`
	RatingNum  int     `json:"ratingNum"`
}

// RatingRequest представляет структуру запроса для выставления оценки.
type RatingRequest struct {
	Rating int `json:"rating"`
}

// ValidRating проверяет, что оценка лежит в диапазоне [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Apply возвращает агрегат после оценки rating.
// previous - прежняя оценка того же автора, nil если автор оценивает впервые.
func (a RatingAggregate) Apply(previous *int, rating int) RatingAggregate {
	// Оценки целые, поэтому сумма восстанавливается без накопления ошибки.
	total := math.Round(a.StarRating * float64(a.RatingNum))

	next := a
	if previous != nil && a.RatingNum > 0 {
		total += float64(rating - *previous)
	} else {
		total += float64(rating)
		next.RatingNum++
	}
	next.StarRating = total / float64(next.RatingNum)
	return next
}
