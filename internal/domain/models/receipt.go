package models

import "time"

// DispatchReceipt is the durable idempotency record for one dispatch call.
// It is inserted in the same transaction as the session and its messages,
// so two requests racing on the same correlation id are settled by the
// unique index at commit: the loser rolls back fully and re-reads the
// winner's receipt.
type DispatchReceipt struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CorrelationID string    `json:"correlationId" gorm:"column:correlation_id;type:uuid;uniqueIndex"`
	SessionID     string    `json:"sessionId" gorm:"column:session_id;type:uuid"`
	QueuedCount   int       `json:"queuedCount" gorm:"column:queued_count"`
	RequesterID   uint      `json:"requesterId" gorm:"column:requester_id"`
	CreatedAt     time.Time `json:"createdAt" gorm:"column:created_at"`
	ExpiresAt     time.Time `json:"expiresAt" gorm:"column:expires_at;index"`
}

func (DispatchReceipt) TableName() string {
	return "dispatch_receipts"
}
