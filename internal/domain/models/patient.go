package models

import (
	"time"

	"gorm.io/gorm"
)

type WhatsAppValidity string

const (
	WhatsAppUnknown WhatsAppValidity = "unknown"
	WhatsAppValid   WhatsAppValidity = "valid"
	WhatsAppInvalid WhatsAppValidity = "invalid"
)

type Patient struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	QueueID          uint             `json:"queueId" gorm:"column:queue_id;index"`
	Name             string           `json:"name" gorm:"column:name"`
	Phone            string           `json:"phone" gorm:"column:phone"`
	Position         int              `json:"position" gorm:"column:position"`
	WhatsAppValidity WhatsAppValidity `json:"whatsAppValidity" gorm:"column:whatsapp_validity;type:varchar(16);default:'unknown'"`
	CreatedAt        time.Time        `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt        gorm.DeletedAt   `json:"deletedAt" gorm:"column:deleted_at"`
}

func (Patient) TableName() string {
	return "patients"
}
