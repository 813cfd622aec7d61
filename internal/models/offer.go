package models

import "time"

// OfferState - состояние предложения.
type OfferState string

const (
	WaitingOffer  OfferState = "waiting"  // Предложение ждёт ответа
	AcceptedOffer OfferState = "accepted" // Предложение принято
	RejectedOffer OfferState = "rejected" // Предложение отклонено
)

// Offer представляет модель предложения работы.
type Offer struct {
	ID             string     `json:"id"`
	FromProviderID string     `json:"fromProviderId"`
	ToProviderID   string     `json:"toProviderId"`
	JobID          string     `json:"jobId"`
	State          OfferState `json:"state"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// OfferSummary - предложение вместе с кратким описанием работы.
type OfferSummary struct {
	Offer
	JobDescription string    `json:"jobDescription"`
	JobEndDate     time.Time `json:"jobEndDate"`
}

// OfferRequest представляет структуру запроса для создания предложения.
type OfferRequest struct {
	ToProviderID string `json:"toProviderId"`
	JobID        string `json:"jobId"`
}

// ArchivedOffer - запись архива отклонённых предложений.
type ArchivedOffer struct {
	ID             string    `json:"id"`
	OfferID        string    `json:"offerId"`
	FromProviderID string    `json:"fromProviderId"`
	ToProviderID   string    `json:"toProviderId"`
	JobID          string    `json:"jobId"`
	RejectedAt     time.Time `json:"rejectedAt"`
}
