package models

import (
	"time"

	"github.com/qmedica/catalog-backend/pkg/enums"
)

// User is an administrative console account.
type User struct {
	ID           uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string     `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         enums.Role `gorm:"column:role;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
