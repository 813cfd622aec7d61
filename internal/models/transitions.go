package models

import "fmt"

// Допустимые переходы. Состояния без исходящих переходов терминальные.
//
//	работа:        open ──► started ──► ended
//	предложение:   waiting ──► accepted | rejected
//	юрист:         available ◄──► reserved
var (
	jobTransitions = map[JobState][]JobState{
		OpenJob:    {StartedJob},
		StartedJob: {EndedJob},
	}
	offerTransitions = map[OfferState][]OfferState{
		WaitingOffer: {AcceptedOffer, RejectedOffer},
	}
	providerTransitions = map[ProviderStatus][]ProviderStatus{
		AvailableProvider: {ReservedProvider},
		ReservedProvider:  {AvailableProvider},
	}
)

// ParseJobState преобразует строку в JobState.
func ParseJobState(s string) (JobState, error) {
	switch st := JobState(s); st {
	case OpenJob, StartedJob, EndedJob:
		return st, nil
	}
	return "", fmt.Errorf("unknown job state %q", s)
}

// ParseOfferState преобразует строку в OfferState.
func ParseOfferState(s string) (OfferState, error) {
	switch st := OfferState(s); st {
	case WaitingOffer, AcceptedOffer, RejectedOffer:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer state %q", s)
}

// ParseProviderStatus преобразует строку в ProviderStatus.
func ParseProviderStatus(s string) (ProviderStatus, error) {
	switch st := ProviderStatus(s); st {
	case AvailableProvider, ReservedProvider:
		return st, nil
	}
	return "", fmt.Errorf("unknown provider status %q", s)
}

// ParseEndJobPolicy преобразует строку в EndJobPolicy.
func ParseEndJobPolicy(s string) (EndJobPolicy, error) {
	switch p := EndJobPolicy(s); p {
	case EndByAssignee, EndByCreator:
		return p, nil
	}
	return "", fmt.Errorf("unknown end job policy %q", s)
}

// CanTransitionTo проверяет переход работы в состояние next.
func (s JobState) CanTransitionTo(next JobState) bool {
	return contains(jobTransitions[s], next)
}

// IsTerminal - из состояния нет переходов.
func (s JobState) IsTerminal() bool {
	return len(jobTransitions[s]) == 0
}

// CanTransitionTo проверяет переход предложения в состояние next.
func (s OfferState) CanTransitionTo(next OfferState) bool {
	return contains(offerTransitions[s], next)
}

// IsTerminal - из состояния нет переходов.
func (s OfferState) IsTerminal() bool {
	return len(offerTransitions[s]) == 0
}

// IsActive - предложение ещё участвует в переговорах или уже определило исполнителя.
func (s OfferState) IsActive() bool {
	return s == WaitingOffer || s == AcceptedOffer
}

// CanTransitionTo проверяет смену статуса юриста на next.
func (s ProviderStatus) CanTransitionTo(next ProviderStatus) bool {
	return contains(providerTransitions[s], next)
}

func contains[T comparable](allowed []T, v T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
