package products

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/qmedica/catalog-backend/pkg/db/models"
)

// ListQuery narrows the product list. CategoryIDs must already be expanded
// through the category-tree closure by the caller.
type ListQuery struct {
	Search      string
	CategoryIDs []uint
	TypeIDs     []uint
	SupplierID  *uint
}

// Children is the full child set written alongside a product row. Edits
// replace every set wholesale; nothing is diffed.
type Children struct {
	Specs         []models.ProductSpecification
	Images        []models.ProductImage
	CategoryIDs   []uint
	TypeIDs       []uint
	MaterialIDs   []uint
	EventIDs      []uint
	TestimonyIDs  []uint
}

// Repository handles product persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Images").
		Preload("Supplier").
		Order("products.created_at DESC").
		Distinct("products.*")

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.Where("products.code ILIKE ? OR products.model ILIKE ? OR products.description ILIKE ?", pattern, pattern, pattern)
	}
	if len(query.CategoryIDs) > 0 {
		q = q.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id IN ?", query.CategoryIDs)
	}
	if len(query.TypeIDs) > 0 {
		q = q.Joins("JOIN product_types pt ON pt.product_id = products.id").
			Where("pt.type_id IN ?", query.TypeIDs)
	}
	if query.SupplierID != nil {
		q = q.Where("products.supplier_id = ?", *query.SupplierID)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Specifications").
		Preload("Images").
		Preload("Categories").
		Preload("Types").
		Preload("Materials").
		Preload("Events.Links").
		Preload("Testimonies.Links").
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateFull inserts the product and every child row in one transaction; a
// failure anywhere leaves no trace of the product.
func (r *Repository) CreateFull(ctx context.Context, product *models.Product, children Children) error {
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(childAssociations...).Create(product).Error; err != nil {
			return err
		}
		return insertChildren(tx, product.ID, children)
	})
}

// UpdateFull saves the parent row, deletes every child set, and reinserts
// the submitted sets inside the same transaction.
func (r *Repository) UpdateFull(ctx context.Context, product *models.Product, children Children) error {
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(childAssociations...).Save(product).Error; err != nil {
			return err
		}
		if err := deleteChildren(tx, product.ID); err != nil {
			return err
		}
		return insertChildren(tx, product.ID, children)
	})
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

var childAssociations = []string{
	"Supplier", "Specifications", "Images", "Categories", "Types", "Materials", "Events", "Testimonies",
}

func deleteChildren(tx *gorm.DB, productID uint) error {
	deletes := []any{
		&models.ProductSpecification{},
		&models.ProductImage{},
		&models.ProductCategory{},
		&models.ProductType{},
		&models.ProductMarketing{},
		&models.ProductEvent{},
		&models.ProductTestimony{},
	}
	for _, model := range deletes {
		if err := tx.Where("product_id = ?", productID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertChildren(tx *gorm.DB, productID uint, children Children) error {
	for i := range children.Specs {
		children.Specs[i].ID = 0
		children.Specs[i].ProductID = productID
		if err := tx.Create(&children.Specs[i]).Error; err != nil {
			return err
		}
	}
	for i := range children.Images {
		children.Images[i].ID = 0
		children.Images[i].ProductID = productID
		if err := tx.Create(&children.Images[i]).Error; err != nil {
			return err
		}
	}
	for _, id := range children.CategoryIDs {
		if err := tx.Create(&models.ProductCategory{ProductID: productID, CategoryID: id}).Error; err != nil {
			return err
		}
	}
	for _, id := range children.TypeIDs {
		if err := tx.Create(&models.ProductType{ProductID: productID, TypeID: id}).Error; err != nil {
			return err
		}
	}
	for _, id := range children.MaterialIDs {
		if err := tx.Create(&models.ProductMarketing{ProductID: productID, MaterialID: id}).Error; err != nil {
			return err
		}
	}
	for _, id := range children.EventIDs {
		if err := tx.Create(&models.ProductEvent{ProductID: productID, EventID: id}).Error; err != nil {
			return err
		}
	}
	for _, id := range children.TestimonyIDs {
		if err := tx.Create(&models.ProductTestimony{ProductID: productID, TestimonyID: id}).Error; err != nil {
			return err
		}
	}
	return nil
}
