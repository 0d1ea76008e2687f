package models

import "time"

// AffiliatedCompany is a distribution partner with its own branded public
// storefront, reachable by the unique shortname path segment.
type AffiliatedCompany struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string     `gorm:"column:name;not null"`
	Shortname     string     `gorm:"column:shortname;not null;uniqueIndex"`
	Logo          *string    `gorm:"column:logo"`
	RegNo         *string    `gorm:"column:reg_no"`
	RegDate       *time.Time `gorm:"column:reg_date"`
	Address       *string    `gorm:"column:address"`
	Website       *string    `gorm:"column:website"`
	Email         *string    `gorm:"column:email"`
	ContactNumber *string    `gorm:"column:contact_number"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AffiliatedCompany) TableName() string {
	return "affiliated_companies"
}
