package models

import "time"

// Supplier sources products and is shared across affiliated companies
// through the supplier_companies join table.
type Supplier struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	CountryID *uint     `gorm:"column:country_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Country   *Setting            `gorm:"foreignKey:CountryID;constraint:OnDelete:SET NULL"`
	Companies []AffiliatedCompany `gorm:"many2many:supplier_companies;constraint:OnDelete:CASCADE"`
}

// SupplierCompany is the supplier to affiliated-company join row.
type SupplierCompany struct {
	SupplierID uint `gorm:"column:supplier_id;primaryKey"`
	CompanyID  uint `gorm:"column:company_id;primaryKey"`
}

func (SupplierCompany) TableName() string {
	return "supplier_companies"
}
