package model

import "time"

// Chat outcomes reported in audit events and metrics.
const (
	OutcomeAnswered        = "answered"
	OutcomeLowConfidence   = "low_confidence"
	OutcomeDegraded        = "degraded"
	OutcomeInvalidInput    = "invalid_input"
	OutcomeUnclearQuestion = "unclear_question"
	OutcomeHarmful         = "harmful"
	OutcomeInternalError   = "internal_error"
)

// ChatEvent is published to Kafka once per chat request.
type ChatEvent struct {
	RequestID      string    `json:"request_id"`
	Message        string    `json:"message"`
	Outcome        string    `json:"outcome"`
	Status         int       `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	Confidence     float64   `json:"confidence"`
	ProcessingTime float64   `json:"processing_time"`
	DocumentCount  int       `json:"document_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatRecord is a persisted ChatEvent.
type ChatRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RequestID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"requestId"`
	Message        string    `gorm:"type:text" json:"message"`
	Outcome        string    `gorm:"type:varchar(32);index;not null" json:"outcome"`
	Status         int       `gorm:"not null" json:"status"`
	Reason         string    `gorm:"type:text" json:"reason"`
	Confidence     float64   `json:"confidence"`
	ProcessingTime float64   `json:"processingTime"`
	DocumentCount  int       `json:"documentCount"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (ChatRecord) TableName() string {
	return "chat_records"
}

// NewChatRecord converts an audit event into its persisted form.
func NewChatRecord(e ChatEvent) *ChatRecord {
	return &ChatRecord{
		RequestID:      e.RequestID,
		Message:        e.Message,
		Outcome:        e.Outcome,
		Status:         e.Status,
		Reason:         e.Reason,
		Confidence:     e.Confidence,
		ProcessingTime: e.ProcessingTime,
		DocumentCount:  e.DocumentCount,
		CreatedAt:      e.CreatedAt,
	}
}
