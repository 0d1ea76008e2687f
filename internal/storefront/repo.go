package storefront

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
)

// Repository runs the public catalog queries. Every product and package
// lookup is scoped to one affiliated company through supplier_companies.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// companyProductScope restricts products to suppliers linked to the company.
func companyProductScope(companyID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"products.supplier_id IN (SELECT supplier_id FROM supplier_companies WHERE company_id = ?)",
			companyID,
		)
	}
}

func (r *Repository) ListProducts(ctx context.Context, companyID uint, search string, categoryIDs []uint) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Scopes(companyProductScope(companyID)).
		Preload("Images").
		Distinct("products.*")

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("products.code ILIKE ? OR products.model ILIKE ? OR products.description ILIKE ?", pattern, pattern, pattern)
	}
	if len(categoryIDs) > 0 {
		query = query.
			Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id IN ?", categoryIDs)
	}

	var products []models.Product
	if err := query.Order("products.code ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) FindProduct(ctx context.Context, companyID, productID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Scopes(companyProductScope(companyID)).
		Preload("Supplier").
		Preload("Specifications").
		Preload("Images").
		Preload("Categories").
		Preload("Types").
		Preload("Materials").
		Preload("Events.Links").
		Preload("Testimonies.Links").
		First(&product, "products.id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductCert loads just the certificate column for a company-visible
// product.
func (r *Repository) FindProductCert(ctx context.Context, companyID, productID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Select("products.id", "products.mda_cert").
		Scopes(companyProductScope(companyID)).
		First(&product, "products.id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListPackages returns bundles containing at least one product reachable
// through the company's suppliers.
func (r *Repository) ListPackages(ctx context.Context, companyID uint, search string) ([]models.Package, error) {
	query := r.db.WithContext(ctx).Model(&models.Package{}).
		Where(`EXISTS (
			SELECT 1 FROM package_products pp
			JOIN products p ON p.id = pp.product_id
			WHERE pp.package_id = packages.id
			  AND p.supplier_id IN (SELECT supplier_id FROM supplier_companies WHERE company_id = ?)
		)`, companyID).
		Preload("Specs", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_specs.sort_order ASC")
		})

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("packages.name ILIKE ? OR packages.description ILIKE ?", pattern, pattern)
	}

	var packages []models.Package
	if err := query.Order("packages.name ASC").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *Repository) FindPackage(ctx context.Context, companyID, packageID uint) (*models.Package, error) {
	var pack models.Package
	err := r.db.WithContext(ctx).
		Where(`EXISTS (
			SELECT 1 FROM package_products pp
			JOIN products p ON p.id = pp.product_id
			WHERE pp.package_id = packages.id
			  AND p.supplier_id IN (SELECT supplier_id FROM supplier_companies WHERE company_id = ?)
		)`, companyID).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_products.sort_order ASC")
		}).
		Preload("Specs", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_specs.sort_order ASC")
		}).
		First(&pack, "packages.id = ?", packageID).Error
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

func (r *Repository) FindEventLink(ctx context.Context, linkID uint) (*models.EventLink, error) {
	var link models.EventLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *Repository) FindTestimonyLink(ctx context.Context, linkID uint) (*models.TestimonyLink, error) {
	var link models.TestimonyLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", linkID).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// PackageProducts loads the company-visible product rows for a bundle in
// sort order.
func (r *Repository) PackageProducts(ctx context.Context, companyID, packageID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Scopes(companyProductScope(companyID)).
		Joins("JOIN package_products pp ON pp.product_id = products.id").
		Where("pp.package_id = ?", packageID).
		Preload("Images").
		Order("pp.sort_order ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
