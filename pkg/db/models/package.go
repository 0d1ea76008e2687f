package models

import "time"

// Package is an admin-curated bundle of products with its own image and
// bullet-point specs.
type Package struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	BundleLabel string    `gorm:"column:bundle_label"`
	MainImage   *string   `gorm:"column:main_image"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`

	Products []PackageProduct `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE"`
	Specs    []PackageSpec    `gorm:"foreignKey:PackageID;constraint:OnDelete:CASCADE"`
}

// PackageProduct orders a product inside a package; sort_order is the
// explicit display position, not insertion order.
type PackageProduct struct {
	PackageID uint `gorm:"column:package_id;primaryKey"`
	ProductID uint `gorm:"column:product_id;primaryKey"`
	SortOrder int  `gorm:"column:sort_order;not null;default:0"`
}

// PackageSpec is one bullet line shown with the package.
type PackageSpec struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"`
	PackageID uint   `gorm:"column:package_id;not null"`
	Icon      string `gorm:"column:icon"`
	SpecText  string `gorm:"column:spec_text"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
}
