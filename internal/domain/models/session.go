package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

type PauseReason string

const (
	PauseManual         PauseReason = "manual"
	PauseSystem         PauseReason = "system"
	PauseQuota          PauseReason = "quota"
	PauseAuthentication PauseReason = "authentication"
)

// MessageSession is one dispatch batch: every message produced by a single
// dispatch call belongs to exactly one session. Counters move as member
// messages transition state; the row itself is created all-or-nothing with
// its messages.
type MessageSession struct {
	ID              string        `json:"id" gorm:"primaryKey;type:uuid"`
	QueueID         uint          `json:"queueId" gorm:"column:queue_id;index"`
	ModeratorID     uint          `json:"moderatorId" gorm:"column:moderator_id;index"`
	RequesterUserID uint          `json:"requesterUserId" gorm:"column:requester_user_id"`
	Status          SessionStatus `json:"status" gorm:"column:status;type:varchar(16);default:'active'"`
	IsPaused        bool          `json:"isPaused" gorm:"column:is_paused;default:false"`
	PauseReason     *PauseReason  `json:"pauseReason" gorm:"column:pause_reason;type:varchar(32)"`
	PausedAt        *time.Time    `json:"pausedAt" gorm:"column:paused_at"`
	PausedBy        *uint         `json:"pausedBy" gorm:"column:paused_by"`
	TotalMessages   int           `json:"totalMessages" gorm:"column:total_messages"`
	SentMessages    int           `json:"sentMessages" gorm:"column:sent_messages"`
	FailedMessages  int           `json:"failedMessages" gorm:"column:failed_messages"`
	OngoingMessages int           `json:"ongoingMessages" gorm:"column:ongoing_messages"`
	CorrelationID   string        `json:"correlationId" gorm:"column:correlation_id;type:uuid;uniqueIndex"`
	StartTime       time.Time     `json:"startTime" gorm:"column:start_time"`
	EndTime         *time.Time    `json:"endTime" gorm:"column:end_time"`
	CreatedAt       time.Time     `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deletedAt" gorm:"column:deleted_at"`

	Messages []Message `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

func (MessageSession) TableName() string {
	return "message_sessions"
}

// Done reports whether every member message reached a terminal state.
func (s *MessageSession) Done() bool {
	return s.OngoingMessages == 0 && s.TotalMessages > 0
}
