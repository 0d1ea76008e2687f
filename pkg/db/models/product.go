package models

import "time"

// Product is the canonical catalog listing.
type Product struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Code        string    `gorm:"column:code;not null"`
	Model       string    `gorm:"column:model"`
	MDARegNo    string    `gorm:"column:mda_reg_no"`
	Description string    `gorm:"column:description"`
	MDACert     *string   `gorm:"column:mda_cert"`
	ProductImage *string  `gorm:"column:product_image"`
	SupplierID  *uint     `gorm:"column:supplier_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Supplier       *Supplier              `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
	Specifications []ProductSpecification `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images         []ProductImage         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Categories     []Category             `gorm:"many2many:product_categories;constraint:OnDelete:CASCADE"`
	Types          []Setting              `gorm:"many2many:product_types;joinForeignKey:ProductID;joinReferences:TypeID;constraint:OnDelete:CASCADE"`
	Materials      []MarketingMaterial    `gorm:"many2many:product_marketing;joinForeignKey:ProductID;joinReferences:MaterialID;constraint:OnDelete:CASCADE"`
	Events         []Event                `gorm:"many2many:product_events;constraint:OnDelete:CASCADE"`
	Testimonies    []Testimony            `gorm:"many2many:product_testimonies;constraint:OnDelete:CASCADE"`
}

// ProductImage is one gallery image; at most one row per product carries
// is_main, enforced by the products service rather than the schema.
type ProductImage struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID uint      `gorm:"column:product_id;not null;index:idx_product_main"`
	ImagePath string    `gorm:"column:image_path;not null"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false;index:idx_product_main"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ProductSpecification is a free-form attribute row.
type ProductSpecification struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID uint   `gorm:"column:product_id;not null"`
	SpecKey   string `gorm:"column:spec_key"`
	SpecValue string `gorm:"column:spec_value"`
}

// ProductType links a product to a product_type row in settings.
type ProductType struct {
	ProductID uint `gorm:"column:product_id;primaryKey"`
	TypeID    uint `gorm:"column:type_id;primaryKey"`
}

func (ProductType) TableName() string {
	return "product_types"
}

// ProductCategory is the product to category join row.
type ProductCategory struct {
	ProductID  uint `gorm:"column:product_id;primaryKey"`
	CategoryID uint `gorm:"column:category_id;primaryKey"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}
