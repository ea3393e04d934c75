package repositories

import (
	"context"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type ConditionRepository struct {
	DB *gorm.DB
}

type ConditionRepositoryInterface interface {
	ListByQueue(ctx context.Context, queueID uint) ([]models.MessageCondition, error)
}

func NewConditionRepository(db *gorm.DB) *ConditionRepository {
	return &ConditionRepository{DB: db}
}

// ListByQueue returns the queue's non-deleted conditions in creation order.
// The resolver depends on this order being stable across calls.
func (repo *ConditionRepository) ListByQueue(ctx context.Context, queueID uint) ([]models.MessageCondition, error) {
	var conditions []models.MessageCondition
	result := repo.DB.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("id ASC").
		Find(&conditions)
	if result.Error != nil {
		return nil, result.Error
	}
	return conditions, nil
}
