package repositories

import (
	"context"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/protocols"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type ChannelRepository struct {
	DB *gorm.DB
}

// ChannelRepositoryInterface extends the read/clear collaborator contract
// with the writes the pause endpoints and the self-heal check need.
type ChannelRepositoryInterface interface {
	protocols.ChannelStatus
	Pause(ctx context.Context, moderatorID uint, reason models.PauseReason, actor uint) error
	HasActiveWork(ctx context.Context, moderatorID uint) (bool, error)
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{DB: db}
}

func (repo *ChannelRepository) Get(ctx context.Context, moderatorID uint) (*models.Channel, error) {
	var channel models.Channel
	result := repo.DB.WithContext(ctx).Where("moderator_id = ?", moderatorID).First(&channel)
	if result.Error != nil {
		return nil, result.Error
	}
	return &channel, nil
}

// Pause flips the channel flag only. Sessions and messages under the
// channel are untouched; their effective pause is derived at read time.
func (repo *ChannelRepository) Pause(ctx context.Context, moderatorID uint, reason models.PauseReason, actor uint) error {
	now := time.Now().UTC()
	return repo.DB.WithContext(ctx).Model(&models.Channel{}).
		Where("moderator_id = ?", moderatorID).
		Updates(map[string]interface{}{
			"is_paused":    true,
			"pause_reason": reason,
			"paused_at":    now,
			"paused_by":    actor,
		}).Error
}

func (repo *ChannelRepository) ClearPause(ctx context.Context, moderatorID uint) error {
	return repo.DB.WithContext(ctx).Model(&models.Channel{}).
		Where("moderator_id = ?", moderatorID).
		Updates(map[string]interface{}{
			"is_paused":    false,
			"pause_reason": nil,
			"paused_at":    nil,
			"paused_by":    nil,
		}).Error
}

// HasActiveWork reports whether any of the moderator's sessions still has
// pending messages. Used by the dispatcher's self-heal check before it
// clears a stale system pause.
func (repo *ChannelRepository) HasActiveWork(ctx context.Context, moderatorID uint) (bool, error) {
	var count int64
	result := repo.DB.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN message_sessions ON message_sessions.id = messages.session_id").
		Where("message_sessions.moderator_id = ?", moderatorID).
		Where("message_sessions.deleted_at IS NULL").
		Where("messages.deleted_at IS NULL").
		Where("messages.status IN ?", []models.MessageStatus{models.MessageQueued, models.MessageSending}).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
