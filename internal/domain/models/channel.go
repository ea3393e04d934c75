package models

import (
	"time"
)

type ChannelConnectivity string

const (
	ChannelConnected      ChannelConnectivity = "connected"
	ChannelPendingAuth    ChannelConnectivity = "pending_auth"
	ChannelNetworkFailure ChannelConnectivity = "network_failure"
	ChannelBrowserClosed  ChannelConnectivity = "browser_closed"
	ChannelDisconnected   ChannelConnectivity = "disconnected"
)

// Channel is one moderator's WhatsApp connection. Its connectivity is owned
// by the external session manager; the dispatcher reads it, rejects on
// blocking states and occasionally clears a stale pause.
type Channel struct {
	ID           uint                `json:"id" gorm:"primaryKey"`
	ModeratorID  uint                `json:"moderatorId" gorm:"column:moderator_id;uniqueIndex"`
	Connectivity ChannelConnectivity `json:"connectivity" gorm:"column:connectivity;type:varchar(24);default:'disconnected'"`
	IsPaused     bool                `json:"isPaused" gorm:"column:is_paused;default:false"`
	PauseReason  *PauseReason        `json:"pauseReason" gorm:"column:pause_reason;type:varchar(32)"`
	PausedAt     *time.Time          `json:"pausedAt" gorm:"column:paused_at"`
	PausedBy     *uint               `json:"pausedBy" gorm:"column:paused_by"`
	CreatedAt    time.Time           `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time           `json:"updatedAt" gorm:"column:updated_at"`
}

func (Channel) TableName() string {
	return "channels"
}

// Healthy reports whether the connection itself is usable.
func (c *Channel) Healthy() bool {
	return c.Connectivity == ChannelConnected
}
