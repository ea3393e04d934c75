package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageTemplate struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QueueID     uint           `json:"queueId" gorm:"column:queue_id;index"`
	ModeratorID uint           `json:"moderatorId" gorm:"column:moderator_id;index"`
	Name        string         `json:"name" gorm:"column:name"`
	Content     string         `json:"content" gorm:"column:content;type:text"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt" gorm:"column:deleted_at"`
}

func (MessageTemplate) TableName() string {
	return "message_templates"
}
