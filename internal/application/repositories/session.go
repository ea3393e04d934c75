package repositories

import (
	"context"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

type SessionRepositoryInterface interface {
	CreateBatch(ctx context.Context, session *models.MessageSession, messages []models.Message, receipt *models.DispatchReceipt) error
	FindById(ctx context.Context, id string) (*models.MessageSession, error)
	ListByQueue(ctx context.Context, queueID uint) ([]models.MessageSession, error)
	Pause(ctx context.Context, id string, reason models.PauseReason, actor uint) error
	Resume(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) (int64, error)
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// CreateBatch persists a dispatch batch all-or-nothing: the session, its
// messages and the idempotency receipt commit together or not at all. A
// correlation-id collision surfaces as gorm.ErrDuplicatedKey and leaves
// no partial state behind.
func (repo *SessionRepository) CreateBatch(ctx context.Context, session *models.MessageSession, messages []models.Message, receipt *models.DispatchReceipt) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if len(messages) > 0 {
			if err := tx.Create(&messages).Error; err != nil {
				return err
			}
		}
		return tx.Create(receipt).Error
	})
}

func (repo *SessionRepository) FindById(ctx context.Context, id string) (*models.MessageSession, error) {
	var session models.MessageSession
	result := repo.DB.WithContext(ctx).Where("id = ?", id).First(&session)
	if result.Error != nil {
		return nil, result.Error
	}
	return &session, nil
}

func (repo *SessionRepository) ListByQueue(ctx context.Context, queueID uint) ([]models.MessageSession, error) {
	var sessions []models.MessageSession
	result := repo.DB.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("created_at DESC").
		Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}
	return sessions, nil
}

// Pause flips the session flag only; member messages keep their own flags.
func (repo *SessionRepository) Pause(ctx context.Context, id string, reason models.PauseReason, actor uint) error {
	now := time.Now().UTC()
	return repo.DB.WithContext(ctx).Model(&models.MessageSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paused":    true,
			"pause_reason": reason,
			"paused_at":    now,
			"paused_by":    actor,
			"status":       models.SessionPaused,
		}).Error
}

// Resume clears the session-level pause. Individually paused messages are
// deliberately left paused; clearing them needs an explicit message resume.
func (repo *SessionRepository) Resume(ctx context.Context, id string) error {
	return repo.DB.WithContext(ctx).Model(&models.MessageSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paused":    false,
			"pause_reason": nil,
			"paused_at":    nil,
			"paused_by":    nil,
			"status":       models.SessionActive,
		}).Error
}

// Cancel soft-deletes the session and fails its still-pending messages.
// Sent messages are untouched. Returns how many messages were cancelled.
func (repo *SessionRepository) Cancel(ctx context.Context, id string) (int64, error) {
	var cancelled int64
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		reason := "session cancelled"

		res := tx.Model(&models.Message{}).
			Where("session_id = ? AND status IN ?", id, []models.MessageStatus{models.MessageQueued, models.MessageSending}).
			Updates(map[string]interface{}{
				"status":        models.MessageFailed,
				"error_message": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		cancelled = res.RowsAffected

		if err := tx.Model(&models.MessageSession{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":           models.SessionCancelled,
				"ongoing_messages": 0,
				"failed_messages":  gorm.Expr("failed_messages + ?", cancelled),
				"end_time":         now,
			}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.MessageSession{}).Error
	})
	return cancelled, err
}
