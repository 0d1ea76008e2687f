package models

import (
	"time"

	"github.com/qmedica/catalog-backend/pkg/enums"
)

// MarketingMaterial is a downloadable sales asset. Brochures may be scoped
// to a single affiliated company for white-labeling; company_id is nil for
// generic materials.
type MarketingMaterial struct {
	ID        uint                   `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string                 `gorm:"column:name"`
	Category  enums.MaterialCategory `gorm:"column:category"`
	CompanyID *uint                  `gorm:"column:company_id"`
	FilePath  string                 `gorm:"column:file_path;not null"`
	FileType  string                 `gorm:"column:file_type"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`

	Company *AffiliatedCompany `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
}

func (MarketingMaterial) TableName() string {
	return "marketing_materials"
}

// ProductMarketing is the product to marketing-material join row.
type ProductMarketing struct {
	ProductID  uint `gorm:"column:product_id;primaryKey"`
	MaterialID uint `gorm:"column:material_id;primaryKey"`
}

func (ProductMarketing) TableName() string {
	return "product_marketing"
}
