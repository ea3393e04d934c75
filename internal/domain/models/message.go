package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageStatus string

const (
	MessageQueued  MessageStatus = "queued"
	MessageSending MessageStatus = "sending"
	MessageSent    MessageStatus = "sent"
	MessageFailed  MessageStatus = "failed"
)

type Message struct {
	ID                 string        `json:"id" gorm:"primaryKey;type:uuid"`
	SessionID          string        `json:"sessionId" gorm:"column:session_id;type:uuid;index"`
	PatientID          uint          `json:"patientId" gorm:"column:patient_id;index"`
	TemplateID         uint          `json:"templateId" gorm:"column:template_id"`
	CalculatedPosition int           `json:"calculatedPosition" gorm:"column:calculated_position"`
	Content            string        `json:"content" gorm:"column:content;type:text"`
	Status             MessageStatus `json:"status" gorm:"column:status;type:varchar(16);default:'queued';index"`
	Attempts           int           `json:"attempts" gorm:"column:attempts;default:0"`
	IsPaused           bool          `json:"isPaused" gorm:"column:is_paused;default:false"`
	PauseReason        *PauseReason  `json:"pauseReason" gorm:"column:pause_reason;type:varchar(32)"`
	PausedAt           *time.Time    `json:"pausedAt" gorm:"column:paused_at"`
	PausedBy           *uint         `json:"pausedBy" gorm:"column:paused_by"`
	ErrorMessage       *string       `json:"errorMessage" gorm:"column:error_message;type:text"`
	CorrelationID      string        `json:"correlationId" gorm:"column:correlation_id;type:uuid;index"`
	LastAttemptAt      *time.Time    `json:"lastAttemptAt" gorm:"column:last_attempt_at"`
	CreatedAt          time.Time     `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt          time.Time     `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt          gorm.DeletedAt `json:"deletedAt" gorm:"column:deleted_at"`

	Session MessageSession `gorm:"foreignKey:SessionID" json:"-"`
	Patient Patient        `gorm:"foreignKey:PatientID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// Pending reports whether the message still awaits a terminal state.
func (m *Message) Pending() bool {
	switch m.Status {
	case MessageQueued, MessageSending:
		return true
	case MessageSent, MessageFailed:
		return false
	}
	return false
}

// EffectivePause derives whether a message may be picked up for sending.
// It is never stored: pausing a channel or session must not rewrite
// message rows, so the predicate is computed at read time from the three
// independent flags.
func EffectivePause(channel *Channel, session *MessageSession, message *Message) bool {
	if channel != nil && channel.IsPaused {
		return true
	}
	if session != nil && session.IsPaused {
		return true
	}
	return message != nil && message.IsPaused
}
