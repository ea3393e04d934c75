package usecase

import (
	"testing"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestResolveTemplate(t *testing.T) {
	const fallbackID = uint(99)

	conditions := []models.MessageCondition{
		{ID: 1, TemplateID: 10, Operator: models.OperatorEqual, Value: intPtr(0)},
		{ID: 2, TemplateID: 11, Operator: models.OperatorLess, Value: intPtr(3)},
		{ID: 3, TemplateID: 12, Operator: models.OperatorRange, MinValue: intPtr(3), MaxValue: intPtr(5)},
		{ID: 4, TemplateID: 13, Operator: models.OperatorGreater, Value: intPtr(5)},
		{ID: 5, TemplateID: 14, Operator: models.OperatorDefault},
	}

	tests := []struct {
		name               string
		calculatedPosition int
		want               uint
	}{
		{"equal wins at zero offset", 0, 10},
		{"less matches before range", 2, 11},
		{"range boundary inclusive low", 3, 12},
		{"range boundary inclusive high", 5, 12},
		{"greater past the range", 6, 13},
		{"negative offset handled by less", -4, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTemplate(conditions, tt.calculatedPosition, fallbackID))
		})
	}
}

func TestResolveTemplateCreationOrderBreaksTies(t *testing.T) {
	// Two valued conditions both match; the earlier-created one wins.
	conditions := []models.MessageCondition{
		{ID: 1, TemplateID: 20, Operator: models.OperatorGreater, Value: intPtr(1)},
		{ID: 2, TemplateID: 21, Operator: models.OperatorGreater, Value: intPtr(0)},
	}
	assert.Equal(t, uint(20), ResolveTemplate(conditions, 5, 99))
}

func TestResolveTemplateDefaultBeatsUnconditioned(t *testing.T) {
	conditions := []models.MessageCondition{
		{ID: 1, TemplateID: 30, Operator: models.OperatorUnconditioned},
		{ID: 2, TemplateID: 31, Operator: models.OperatorDefault},
		{ID: 3, TemplateID: 32, Operator: models.OperatorEqual, Value: intPtr(7)},
	}
	// No valued condition matches, so DEFAULT wins even though the
	// UNCONDITIONED one was created first.
	assert.Equal(t, uint(31), ResolveTemplate(conditions, 1, 99))
}

func TestResolveTemplateUnconditionedWhenNoDefault(t *testing.T) {
	conditions := []models.MessageCondition{
		{ID: 1, TemplateID: 40, Operator: models.OperatorEqual, Value: intPtr(3)},
		{ID: 2, TemplateID: 41, Operator: models.OperatorUnconditioned},
		{ID: 3, TemplateID: 42, Operator: models.OperatorUnconditioned},
	}
	assert.Equal(t, uint(41), ResolveTemplate(conditions, 9, 99))
}

func TestResolveTemplateFallsBackWhenNothingApplies(t *testing.T) {
	conditions := []models.MessageCondition{
		{ID: 1, TemplateID: 50, Operator: models.OperatorEqual, Value: intPtr(2)},
	}
	assert.Equal(t, uint(99), ResolveTemplate(conditions, 4, 99))
	assert.Equal(t, uint(99), ResolveTemplate(nil, 0, 99))
}

func TestResolveTemplateSkipsConditionsMissingValues(t *testing.T) {
	conditions := []models.MessageCondition{
		{ID: 1, TemplateID: 60, Operator: models.OperatorEqual},                      // nil Value
		{ID: 2, TemplateID: 61, Operator: models.OperatorRange, MinValue: intPtr(0)}, // half a range
		{ID: 3, TemplateID: 62, Operator: models.OperatorGreater, Value: intPtr(-1)},
	}
	assert.Equal(t, uint(62), ResolveTemplate(conditions, 0, 99))
}

func TestConditionMatchesNeverPanicsOnNilValues(t *testing.T) {
	for _, op := range []models.ConditionOperator{
		models.OperatorEqual, models.OperatorGreater, models.OperatorLess,
		models.OperatorRange, models.OperatorDefault, models.OperatorUnconditioned,
	} {
		cond := models.MessageCondition{Operator: op}
		assert.False(t, cond.Matches(0), "operator %s with no values must not match", op)
	}
}
