package settings

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
	"github.com/qmedica/catalog-backend/pkg/enums"
)

// Repository handles lookup-table persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByType(ctx context.Context, settingType enums.SettingType) ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.WithContext(ctx).
		Where("type = ?", settingType).
		Order("value").
		Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting, id).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *Repository) Create(ctx context.Context, setting *models.Setting) error {
	if setting == nil {
		return fmt.Errorf("setting is required")
	}
	return r.db.WithContext(ctx).Create(setting).Error
}

func (r *Repository) Update(ctx context.Context, setting *models.Setting) error {
	if setting == nil {
		return fmt.Errorf("setting is required")
	}
	return r.db.WithContext(ctx).Save(setting).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Setting{}, id).Error
}
