package packages

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
)

// Repository persists packages and their product/spec child rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, search string) ([]models.Package, error) {
	query := r.db.WithContext(ctx).Model(&models.Package{}).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_products.sort_order ASC")
		}).
		Preload("Specs", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_specs.sort_order ASC")
		})

	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var packages []models.Package
	if err := query.Order("name ASC").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Package, error) {
	var pack models.Package
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_products.sort_order ASC")
		}).
		Preload("Specs", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_specs.sort_order ASC")
		}).
		First(&pack, id).Error
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

// CreateWithChildren writes the package row plus its product and spec rows in
// one transaction.
func (r *Repository) CreateWithChildren(ctx context.Context, pack *models.Package, products []models.PackageProduct, specs []models.PackageSpec) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products", "Specs").Create(pack).Error; err != nil {
			return err
		}
		return insertChildren(tx, pack.ID, products, specs)
	})
}

// UpdateWithChildren rewrites the package row and replaces both child sets
// with the submitted rows.
func (r *Repository) UpdateWithChildren(ctx context.Context, pack *models.Package, products []models.PackageProduct, specs []models.PackageSpec) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products", "Specs").Save(pack).Error; err != nil {
			return err
		}
		if err := tx.Where("package_id = ?", pack.ID).Delete(&models.PackageProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("package_id = ?", pack.ID).Delete(&models.PackageSpec{}).Error; err != nil {
			return err
		}
		return insertChildren(tx, pack.ID, products, specs)
	})
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Package{}, id).Error
}

func insertChildren(tx *gorm.DB, packageID uint, products []models.PackageProduct, specs []models.PackageSpec) error {
	for i := range products {
		products[i].PackageID = packageID
	}
	if len(products) > 0 {
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
	}
	for i := range specs {
		specs[i].ID = 0
		specs[i].PackageID = packageID
	}
	if len(specs) > 0 {
		if err := tx.Create(&specs).Error; err != nil {
			return err
		}
	}
	return nil
}
