package companies

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
)

// Repository handles affiliated-company persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, search string) ([]models.AffiliatedCompany, error) {
	query := r.db.WithContext(ctx).Order("name")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR shortname ILIKE ?", pattern, pattern)
	}
	var companies []models.AffiliatedCompany
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.AffiliatedCompany, error) {
	var company models.AffiliatedCompany
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *Repository) FindByShortname(ctx context.Context, shortname string) (*models.AffiliatedCompany, error) {
	var company models.AffiliatedCompany
	if err := r.db.WithContext(ctx).
		Where("shortname = ?", shortname).
		First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *Repository) Create(ctx context.Context, company *models.AffiliatedCompany) error {
	if company == nil {
		return fmt.Errorf("company is required")
	}
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *Repository) Update(ctx context.Context, company *models.AffiliatedCompany) error {
	if company == nil {
		return fmt.Errorf("company is required")
	}
	return r.db.WithContext(ctx).Save(company).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.AffiliatedCompany{}, id).Error
}
