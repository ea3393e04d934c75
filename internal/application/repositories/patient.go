package repositories

import (
	"context"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type PatientRepository struct {
	DB *gorm.DB
}

type PatientRepositoryInterface interface {
	FindById(ctx context.Context, id uint) (*models.Patient, error)
	FindByIds(ctx context.Context, queueID uint, ids []uint) ([]models.Patient, error)
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{DB: db}
}

func (repo *PatientRepository) FindById(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	result := repo.DB.WithContext(ctx).Where("id = ?", id).First(&patient)
	if result.Error != nil {
		return nil, result.Error
	}
	return &patient, nil
}

func (repo *PatientRepository) FindByIds(ctx context.Context, queueID uint, ids []uint) ([]models.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var patients []models.Patient
	result := repo.DB.WithContext(ctx).
		Where("queue_id = ? AND id IN ?", queueID, ids).
		Order("position ASC").
		Find(&patients)
	if result.Error != nil {
		return nil, result.Error
	}
	return patients, nil
}
