package models

import "time"

// Event is a trade show or demonstration tied to products.
type Event struct {
	ID        uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string     `gorm:"column:name;not null"`
	Location  string     `gorm:"column:location"`
	StartDate *time.Time `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`

	Links []EventLink `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// EventLink is an external reference attached to an event. Links pointing at
// a known video host double as the event's video.
type EventLink struct {
	ID      uint   `gorm:"column:id;primaryKey;autoIncrement"`
	EventID uint   `gorm:"column:event_id;not null"`
	Title   string `gorm:"column:title"`
	URL     string `gorm:"column:url"`
}

// ProductEvent is the product to event join row.
type ProductEvent struct {
	ProductID uint `gorm:"column:product_id;primaryKey"`
	EventID   uint `gorm:"column:event_id;primaryKey"`
}

func (ProductEvent) TableName() string {
	return "product_events"
}
