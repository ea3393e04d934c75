package usecase

import (
	"context"
	"fmt"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/repositories"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/sirupsen/logrus"
)

type CancelSessionUseCase struct {
	Sessions repositories.SessionRepositoryInterface
	Log      *logrus.Logger
}

func NewCancelSessionUseCase(sessions repositories.SessionRepositoryInterface, log *logrus.Logger) *CancelSessionUseCase {
	return &CancelSessionUseCase{Sessions: sessions, Log: log}
}

// Execute cancels a dispatch batch: the session is soft-deleted and its
// still-pending messages are failed with a cancellation note. Messages
// already sent stay sent. Returns how many messages were cancelled.
func (cu *CancelSessionUseCase) Execute(ctx context.Context, sessionID string) (int64, error) {
	session, err := cu.Sessions.FindById(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if session.Status == models.SessionCancelled {
		return 0, fmt.Errorf("session %s is already cancelled", sessionID)
	}

	cancelled, err := cu.Sessions.Cancel(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("cancel session: %w", err)
	}

	cu.Log.WithFields(logrus.Fields{"sessionId": sessionID, "cancelled": cancelled}).
		Info("[CANCEL] - Session cancelled")
	return cancelled, nil
}
