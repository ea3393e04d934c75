package services

import (
	"strconv"
	"strings"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
)

// TemplateRenderer is the default protocols.VariableResolver: it replaces
// the clinic placeholder tokens with patient and queue values. Unknown
// tokens are left untouched so operators can spot template typos in the
// rendered output.
type TemplateRenderer struct{}

func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

func (tr *TemplateRenderer) Resolve(templateContent string, patient *models.Patient, queue *models.Queue, calculatedPosition int) string {
	if templateContent == "" {
		return templateContent
	}

	waitMinutes := 0
	if calculatedPosition > 0 {
		waitMinutes = calculatedPosition * queue.EstimatedWaitMinutes
	}

	replacer := strings.NewReplacer(
		"{{name}}", patient.Name,
		"{{position}}", strconv.Itoa(patient.Position),
		"{{currentPosition}}", strconv.Itoa(queue.CurrentPosition),
		"{{calculatedPosition}}", strconv.Itoa(calculatedPosition),
		"{{waitMinutes}}", strconv.Itoa(waitMinutes),
		"{{queue}}", queue.Name,
	)
	return replacer.Replace(templateContent)
}
