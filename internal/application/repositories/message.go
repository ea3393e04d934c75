package repositories

import (
	"context"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

type MessageRepositoryInterface interface {
	FindById(ctx context.Context, id string) (*models.Message, error)
	ListFailedBySession(ctx context.Context, sessionID string) ([]models.Message, error)
	ListDispatchable(ctx context.Context, limit int) ([]models.Message, error)
	Pause(ctx context.Context, id string, reason models.PauseReason, actor uint) error
	Resume(ctx context.Context, id string) error
	Requeue(ctx context.Context, id string) error
	MarkSending(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errorMessage string) error
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (repo *MessageRepository) FindById(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	result := repo.DB.WithContext(ctx).Where("id = ?", id).First(&message)
	if result.Error != nil {
		return nil, result.Error
	}
	return &message, nil
}

// ListFailedBySession loads a session's failed messages with their patients,
// including soft-deleted patients, so the classifier can see deletions.
func (repo *MessageRepository) ListFailedBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	var messages []models.Message
	result := repo.DB.WithContext(ctx).
		Preload("Patient", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("session_id = ? AND status = ?", sessionID, models.MessageFailed).
		Order("created_at ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// ListDispatchable is the external sender's selection query: queued messages
// whose derived effective pause is false. The three pause flags are joined
// at read time, never denormalized into message rows.
func (repo *MessageRepository) ListDispatchable(ctx context.Context, limit int) ([]models.Message, error) {
	var messages []models.Message
	result := repo.DB.WithContext(ctx).
		Joins("JOIN message_sessions ON message_sessions.id = messages.session_id").
		Joins("JOIN channels ON channels.moderator_id = message_sessions.moderator_id").
		Where("messages.status = ?", models.MessageQueued).
		Where("messages.is_paused = false").
		Where("message_sessions.is_paused = false").
		Where("message_sessions.deleted_at IS NULL").
		Where("channels.is_paused = false").
		Order("messages.created_at ASC").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// Pause flags one message. A message caught mid-flight is demoted back to
// queued so a later resume retries it cleanly instead of leaving it in an
// ambiguous sending state.
func (repo *MessageRepository) Pause(ctx context.Context, id string, reason models.PauseReason, actor uint) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.Where("id = ?", id).First(&message).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"is_paused":    true,
			"pause_reason": reason,
			"paused_at":    time.Now().UTC(),
			"paused_by":    actor,
		}
		if message.Status == models.MessageSending {
			updates["status"] = models.MessageQueued
		}
		return tx.Model(&models.Message{}).Where("id = ?", id).Updates(updates).Error
	})
}

func (repo *MessageRepository) Resume(ctx context.Context, id string) error {
	return repo.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paused":    false,
			"pause_reason": nil,
			"paused_at":    nil,
			"paused_by":    nil,
		}).Error
}

// Requeue returns a failed message to the queue for retry. Attempts are a
// retry-history counter and are never reset. Session counters move in the
// same transaction.
func (repo *MessageRepository) Requeue(ctx context.Context, id string) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.Where("id = ? AND status = ?", id, models.MessageFailed).First(&message).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Message{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":          models.MessageQueued,
				"is_paused":       false,
				"pause_reason":    nil,
				"paused_at":       nil,
				"paused_by":       nil,
				"error_message":   nil,
				"last_attempt_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.MessageSession{}).Where("id = ?", message.SessionID).
			Updates(map[string]interface{}{
				"failed_messages":  gorm.Expr("failed_messages - 1"),
				"ongoing_messages": gorm.Expr("ongoing_messages + 1"),
				"status":           models.SessionActive,
				"end_time":         nil,
			}).Error
	})
}

func (repo *MessageRepository) MarkSending(ctx context.Context, id string) error {
	return repo.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND status = ?", id, models.MessageQueued).
		Updates(map[string]interface{}{
			"status":          models.MessageSending,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_attempt_at": time.Now().UTC(),
		}).Error
}

func (repo *MessageRepository) MarkSent(ctx context.Context, id string) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.Where("id = ?", id).First(&message).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Message{}).Where("id = ?", id).
			Update("status", models.MessageSent).Error; err != nil {
			return err
		}
		return repo.settleSessionCounters(tx, message.SessionID, "sent_messages")
	})
}

func (repo *MessageRepository) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.Where("id = ?", id).First(&message).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Message{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":        models.MessageFailed,
				"error_message": errorMessage,
			}).Error; err != nil {
			return err
		}
		return repo.settleSessionCounters(tx, message.SessionID, "failed_messages")
	})
}

// settleSessionCounters moves one message out of ongoing into the given
// terminal counter and completes the session when nothing is left pending.
func (repo *MessageRepository) settleSessionCounters(tx *gorm.DB, sessionID string, terminalColumn string) error {
	if err := tx.Model(&models.MessageSession{}).Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			terminalColumn:     gorm.Expr(terminalColumn + " + 1"),
			"ongoing_messages": gorm.Expr("ongoing_messages - 1"),
		}).Error; err != nil {
		return err
	}

	return tx.Model(&models.MessageSession{}).
		Where("id = ? AND ongoing_messages <= 0 AND status = ?", sessionID, models.SessionActive).
		Updates(map[string]interface{}{
			"status":   models.SessionCompleted,
			"end_time": time.Now().UTC(),
		}).Error
}
