package models

import "time"

// Testimony is a client success story tied to products.
type Testimony struct {
	ID         uint       `gorm:"column:id;primaryKey;autoIncrement"`
	ClientName string     `gorm:"column:client_name;not null"`
	Location   string     `gorm:"column:location"`
	StartDate  *time.Time `gorm:"column:start_date"`
	EndDate    *time.Time `gorm:"column:end_date"`
	Treatment  string     `gorm:"column:treatment"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`

	Links []TestimonyLink `gorm:"foreignKey:TestimonyID;constraint:OnDelete:CASCADE"`
}

func (Testimony) TableName() string {
	return "testimonies"
}

// TestimonyLink is an external reference attached to a testimony.
type TestimonyLink struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement"`
	TestimonyID uint   `gorm:"column:testimony_id;not null"`
	Title       string `gorm:"column:title"`
	URL         string `gorm:"column:url"`
}

// ProductTestimony is the product to testimony join row.
type ProductTestimony struct {
	ProductID   uint `gorm:"column:product_id;primaryKey"`
	TestimonyID uint `gorm:"column:testimony_id;primaryKey"`
}

func (ProductTestimony) TableName() string {
	return "product_testimonies"
}
