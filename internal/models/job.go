package models

import "time"

type (
	JobState     string // Состояние работы
	EndJobPolicy string // Кто вправе завершить работу
)

const (
	OpenJob    JobState = "open"    // Работа создана и ждёт исполнителя
	StartedJob JobState = "started" // Предложение принято, работа выполняется
	EndedJob   JobState = "ended"   // Работа завершена

	EndByAssignee EndJobPolicy = "assignee" // Завершает назначенный исполнитель
	EndByCreator  EndJobPolicy = "creator"  // Завершает автор работы
)

// Job представляет модель работы.
type Job struct {
	ID                 string     `json:"id"`
	CreatorID          string     `json:"creatorId"`
	AssignedProviderID *string    `json:"assignedProviderId"`
	Description        string     `json:"description"`
	EndDate            time.Time  `json:"endDate"`
	StartDate          *time.Time `json:"startDate"`
	State              JobState   `json:"state"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// JobRequest представляет структуру запроса для создания работы.
type JobRequest struct {
	Description string `json:"description"`
	EndDate     string `json:"endDate"`
}

// IsAssignedTo проверяет, назначена ли работа юристу providerID.
func (j *Job) IsAssignedTo(providerID string) bool {
	return j.AssignedProviderID != nil && *j.AssignedProviderID == providerID
}

// CanBeEndedBy проверяет право callerID завершить работу при политике policy.
func (j *Job) CanBeEndedBy(callerID string, policy EndJobPolicy) bool {
	switch policy {
	case EndByCreator:
		return j.CreatorID == callerID
	case EndByAssignee:
		return j.IsAssignedTo(callerID)
	}
	return false
}
