package usecase

import (
	"context"
	"fmt"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/repositories"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/sirupsen/logrus"
)

// PauseUseCase toggles the three independent pause levels. Each toggle
// writes exactly one row regardless of batch size: the effective pause of
// any message is derived at read time (models.EffectivePause and the
// ListDispatchable join), never fanned out into message rows.
type PauseUseCase struct {
	Channels repositories.ChannelRepositoryInterface
	Sessions repositories.SessionRepositoryInterface
	Messages repositories.MessageRepositoryInterface
	Log      *logrus.Logger
}

func NewPauseUseCase(
	channels repositories.ChannelRepositoryInterface,
	sessions repositories.SessionRepositoryInterface,
	messages repositories.MessageRepositoryInterface,
	log *logrus.Logger,
) *PauseUseCase {
	return &PauseUseCase{Channels: channels, Sessions: sessions, Messages: messages, Log: log}
}

func (pu *PauseUseCase) PauseChannel(ctx context.Context, moderatorID uint, reason models.PauseReason, actor uint) error {
	if err := pu.Channels.Pause(ctx, moderatorID, reason, actor); err != nil {
		return fmt.Errorf("pause channel: %w", err)
	}
	pu.Log.WithFields(logrus.Fields{"moderatorId": moderatorID, "reason": reason}).
		Info("[PAUSE] - Channel paused")
	return nil
}

// ResumeChannel clears the channel-level flag only. Sessions and messages
// paused in their own right stay paused until resumed explicitly.
func (pu *PauseUseCase) ResumeChannel(ctx context.Context, moderatorID uint) error {
	if err := pu.Channels.ClearPause(ctx, moderatorID); err != nil {
		return fmt.Errorf("resume channel: %w", err)
	}
	pu.Log.WithField("moderatorId", moderatorID).Info("[PAUSE] - Channel resumed")
	return nil
}

func (pu *PauseUseCase) PauseSession(ctx context.Context, sessionID string, reason models.PauseReason, actor uint) error {
	if _, err := pu.Sessions.FindById(ctx, sessionID); err != nil {
		return err
	}
	if err := pu.Sessions.Pause(ctx, sessionID, reason, actor); err != nil {
		return fmt.Errorf("pause session: %w", err)
	}
	pu.Log.WithFields(logrus.Fields{"sessionId": sessionID, "reason": reason}).
		Info("[PAUSE] - Session paused")
	return nil
}

func (pu *PauseUseCase) ResumeSession(ctx context.Context, sessionID string) error {
	if _, err := pu.Sessions.FindById(ctx, sessionID); err != nil {
		return err
	}
	if err := pu.Sessions.Resume(ctx, sessionID); err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	pu.Log.WithField("sessionId", sessionID).Info("[PAUSE] - Session resumed")
	return nil
}

func (pu *PauseUseCase) PauseMessage(ctx context.Context, messageID string, reason models.PauseReason, actor uint) error {
	if err := pu.Messages.Pause(ctx, messageID, reason, actor); err != nil {
		return fmt.Errorf("pause message: %w", err)
	}
	pu.Log.WithFields(logrus.Fields{"messageId": messageID, "reason": reason}).
		Info("[PAUSE] - Message paused")
	return nil
}

func (pu *PauseUseCase) ResumeMessage(ctx context.Context, messageID string) error {
	if err := pu.Messages.Resume(ctx, messageID); err != nil {
		return fmt.Errorf("resume message: %w", err)
	}
	pu.Log.WithField("messageId", messageID).Info("[PAUSE] - Message resumed")
	return nil
}
