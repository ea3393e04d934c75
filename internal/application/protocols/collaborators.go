package protocols

import (
	"context"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
)

// QuotaGate answers whether a requester still has capacity for count sends.
// Dispatch only checks; consumption happens elsewhere, on confirmed send.
type QuotaGate interface {
	HasQuota(ctx context.Context, userID uint, count int) (bool, error)
}

// ModeratorResolver maps a requesting user to the moderator whose channel
// will carry the batch.
type ModeratorResolver interface {
	EffectiveModeratorID(ctx context.Context, userID uint) (uint, error)
}

// ChannelStatus exposes the per-moderator WhatsApp connection state. The
// dispatcher reads it and may clear a stale pause; it never owns it.
type ChannelStatus interface {
	Get(ctx context.Context, moderatorID uint) (*models.Channel, error)
	ClearPause(ctx context.Context, moderatorID uint) error
}

// VariableResolver renders a template's placeholders for one patient.
type VariableResolver interface {
	Resolve(templateContent string, patient *models.Patient, queue *models.Queue, calculatedPosition int) string
}
