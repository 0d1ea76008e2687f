package models

// Category is a node in the product category forest. Deleting a category
// cascades to its children and to product associations.
type Category struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string `gorm:"column:name;not null"`
	ParentID *uint  `gorm:"column:parent_id"`

	Children []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}
