package repositories

import (
	"context"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type QueueRepository struct {
	DB *gorm.DB
}

type QueueRepositoryInterface interface {
	FindById(ctx context.Context, id uint) (*models.Queue, error)
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{DB: db}
}

func (repo *QueueRepository) FindById(ctx context.Context, id uint) (*models.Queue, error) {
	var queue models.Queue
	result := repo.DB.WithContext(ctx).Where("id = ?", id).First(&queue)
	if result.Error != nil {
		return nil, result.Error
	}
	return &queue, nil
}
