package models

import (
	"time"

	"gorm.io/gorm"
)

type Queue struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	Name                 string         `json:"name" gorm:"column:name"`
	CurrentPosition      int            `json:"currentPosition" gorm:"column:current_position"`
	EstimatedWaitMinutes int            `json:"estimatedWaitMinutes" gorm:"column:estimated_wait_minutes"`
	ModeratorID          uint           `json:"moderatorId" gorm:"column:moderator_id;index"`
	CreatedAt            time.Time      `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt            time.Time      `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deletedAt" gorm:"column:deleted_at"`

	Patients   []Patient          `gorm:"foreignKey:QueueID" json:"patients,omitempty"`
	Templates  []MessageTemplate  `gorm:"foreignKey:QueueID" json:"templates,omitempty"`
	Conditions []MessageCondition `gorm:"foreignKey:QueueID" json:"conditions,omitempty"`
}

func (Queue) TableName() string {
	return "queues"
}

// CalculatedPosition is the patient's offset from the position currently
// being served. Negative means the patient has already been passed.
func (q *Queue) CalculatedPosition(p *Patient) int {
	return p.Position - q.CurrentPosition
}
