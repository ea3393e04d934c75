package usecase

import (
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
)

// ResolveTemplate picks the template for one patient from a queue's
// condition set. It is a pure function of its inputs: the same condition
// slice (in creation order), calculated position and fallback always yield
// the same template, which keeps batch creation deterministic and the
// selection replayable in tests.
//
// Order of precedence:
//  1. first valued condition (EQUAL/GREATER/LESS/RANGE) whose predicate
//     holds, in creation order
//  2. the DEFAULT condition, if present
//  3. the first UNCONDITIONED condition, if present
//  4. the caller-supplied fallback template
func ResolveTemplate(conditions []models.MessageCondition, calculatedPosition int, fallbackTemplateID uint) uint {
	var defaultCond *models.MessageCondition
	var unconditioned *models.MessageCondition

	for i := range conditions {
		cond := &conditions[i]
		switch cond.Operator {
		case models.OperatorEqual, models.OperatorGreater, models.OperatorLess, models.OperatorRange:
			if cond.Matches(calculatedPosition) {
				return cond.TemplateID
			}
		case models.OperatorDefault:
			if defaultCond == nil {
				defaultCond = cond
			}
		case models.OperatorUnconditioned:
			if unconditioned == nil {
				unconditioned = cond
			}
		}
	}

	if defaultCond != nil {
		return defaultCond.TemplateID
	}
	if unconditioned != nil {
		return unconditioned.TemplateID
	}
	return fallbackTemplateID
}
