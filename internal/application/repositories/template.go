package repositories

import (
	"context"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	DB *gorm.DB
}

type TemplateRepositoryInterface interface {
	FindById(ctx context.Context, id uint) (*models.MessageTemplate, error)
	FindByIds(ctx context.Context, ids []uint) ([]models.MessageTemplate, error)
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (repo *TemplateRepository) FindById(ctx context.Context, id uint) (*models.MessageTemplate, error) {
	var template models.MessageTemplate
	result := repo.DB.WithContext(ctx).Where("id = ?", id).First(&template)
	if result.Error != nil {
		return nil, result.Error
	}
	return &template, nil
}

func (repo *TemplateRepository) FindByIds(ctx context.Context, ids []uint) ([]models.MessageTemplate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var templates []models.MessageTemplate
	result := repo.DB.WithContext(ctx).Where("id IN ?", ids).Find(&templates)
	if result.Error != nil {
		return nil, result.Error
	}
	return templates, nil
}
