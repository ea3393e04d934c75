package models

import (
	"time"

	"gorm.io/gorm"
)

type ConditionOperator string

const (
	OperatorEqual         ConditionOperator = "EQUAL"
	OperatorGreater       ConditionOperator = "GREATER"
	OperatorLess          ConditionOperator = "LESS"
	OperatorRange         ConditionOperator = "RANGE"
	OperatorDefault       ConditionOperator = "DEFAULT"
	OperatorUnconditioned ConditionOperator = "UNCONDITIONED"
)

// Valued reports whether the operator compares the calculated position
// against a numeric value or range, as opposed to the sentinel operators.
func (op ConditionOperator) Valued() bool {
	switch op {
	case OperatorEqual, OperatorGreater, OperatorLess, OperatorRange:
		return true
	case OperatorDefault, OperatorUnconditioned:
		return false
	}
	return false
}

// MessageCondition binds a template to a position-relative predicate.
// At most one condition exists per template, and at most one condition
// per queue carries OperatorDefault.
type MessageCondition struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	QueueID    uint              `json:"queueId" gorm:"column:queue_id;index"`
	TemplateID uint              `json:"templateId" gorm:"column:template_id;uniqueIndex"`
	Operator   ConditionOperator `json:"operator" gorm:"column:operator;type:varchar(16)"`
	Value      *int              `json:"value" gorm:"column:value"`
	MinValue   *int              `json:"minValue" gorm:"column:min_value"`
	MaxValue   *int              `json:"maxValue" gorm:"column:max_value"`
	CreatedAt  time.Time         `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt    `json:"deletedAt" gorm:"column:deleted_at"`
}

func (MessageCondition) TableName() string {
	return "message_conditions"
}

// Matches evaluates a valued condition against a calculated position.
// A condition missing its required value(s) never matches. Sentinel
// operators never match here; they are handled by the resolver.
func (c *MessageCondition) Matches(calculatedPosition int) bool {
	switch c.Operator {
	case OperatorEqual:
		return c.Value != nil && calculatedPosition == *c.Value
	case OperatorGreater:
		return c.Value != nil && calculatedPosition > *c.Value
	case OperatorLess:
		return c.Value != nil && calculatedPosition < *c.Value
	case OperatorRange:
		return c.MinValue != nil && c.MaxValue != nil &&
			calculatedPosition >= *c.MinValue && calculatedPosition <= *c.MaxValue
	case OperatorDefault, OperatorUnconditioned:
		return false
	}
	return false
}
