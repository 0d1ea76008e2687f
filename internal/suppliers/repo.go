package suppliers

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
)

// Repository handles supplier persistence, including the company join set.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, search string, countryID *uint) ([]models.Supplier, error) {
	query := r.db.WithContext(ctx).
		Preload("Country").
		Preload("Companies").
		Order("name")
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	if countryID != nil {
		query = query.Where("country_id = ?", *countryID)
	}
	var suppliers []models.Supplier
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).
		Preload("Country").
		Preload("Companies").
		First(&supplier, id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// CreateWithCompanies inserts the supplier row and its company links in one
// transaction; a failed link insert rolls back the supplier row too.
func (r *Repository) CreateWithCompanies(ctx context.Context, supplier *models.Supplier, companyIDs []uint) error {
	if supplier == nil {
		return fmt.Errorf("supplier is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Companies").Create(supplier).Error; err != nil {
			return err
		}
		return insertCompanyLinks(tx, supplier.ID, companyIDs)
	})
}

// UpdateWithCompanies saves the supplier and replaces its company set
// wholesale: existing join rows are deleted and the submitted set reinserted.
func (r *Repository) UpdateWithCompanies(ctx context.Context, supplier *models.Supplier, companyIDs []uint) error {
	if supplier == nil {
		return fmt.Errorf("supplier is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Companies", "Country").Save(supplier).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", supplier.ID).Delete(&models.SupplierCompany{}).Error; err != nil {
			return err
		}
		return insertCompanyLinks(tx, supplier.ID, companyIDs)
	})
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Supplier{}, id).Error
}

func insertCompanyLinks(tx *gorm.DB, supplierID uint, companyIDs []uint) error {
	for _, companyID := range companyIDs {
		link := models.SupplierCompany{SupplierID: supplierID, CompanyID: companyID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
