package repositories

import (
	"context"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type ReceiptRepository struct {
	DB *gorm.DB
}

type ReceiptRepositoryInterface interface {
	FindByCorrelation(ctx context.Context, correlationID string) (*models.DispatchReceipt, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{DB: db}
}

func (repo *ReceiptRepository) FindByCorrelation(ctx context.Context, correlationID string) (*models.DispatchReceipt, error) {
	var receipt models.DispatchReceipt
	result := repo.DB.WithContext(ctx).
		Where("correlation_id = ? AND expires_at > ?", correlationID, time.Now().UTC()).
		First(&receipt)
	if result.Error != nil {
		return nil, result.Error
	}
	return &receipt, nil
}

func (repo *ReceiptRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.DB.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.DispatchReceipt{})
	return result.RowsAffected, result.Error
}
