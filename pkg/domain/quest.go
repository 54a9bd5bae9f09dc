package domain

import "time"

// QuestStatus is the lifecycle state of a quest record. The engine only
// reads and writes these records; objective completion is computed by
// the quest tracker, an external collaborator.
type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
)

// QuestRecord is a per-quest-key lifecycle record with timestamps.
type QuestRecord struct {
	Status    QuestStatus `json:"status"`
	StartedAt time.Time   `json:"started_at,omitempty"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
}
