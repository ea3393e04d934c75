package services

import (
	"testing"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestTemplateRendererResolve(t *testing.T) {
	renderer := NewTemplateRenderer()
	queue := &models.Queue{Name: "Dr. Hamza", CurrentPosition: 5, EstimatedWaitMinutes: 10}
	patient := &models.Patient{Name: "Ahmed", Position: 8}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			"all tokens",
			"Hi {{name}}, you are #{{position}} in {{queue}}; now serving {{currentPosition}}, {{calculatedPosition}} ahead of you (~{{waitMinutes}} min).",
			"Hi Ahmed, you are #8 in Dr. Hamza; now serving 5, 3 ahead of you (~30 min).",
		},
		{"no tokens", "Please come to the clinic.", "Please come to the clinic."},
		{"unknown token kept", "Hello {{nmae}}", "Hello {{nmae}}"},
		{"empty template", "", ""},
		{"repeated token", "{{name}} {{name}}", "Ahmed Ahmed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderer.Resolve(tt.template, patient, queue, queue.CalculatedPosition(patient))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplateRendererWaitMinutesFloorsAtZero(t *testing.T) {
	renderer := NewTemplateRenderer()
	queue := &models.Queue{Name: "Dr. Hamza", CurrentPosition: 5, EstimatedWaitMinutes: 10}
	// Already being served, and already passed.
	for _, position := range []int{5, 2} {
		patient := &models.Patient{Name: "Sara", Position: position}
		got := renderer.Resolve("wait {{waitMinutes}}", patient, queue, queue.CalculatedPosition(patient))
		assert.Equal(t, "wait 0", got)
	}
}
