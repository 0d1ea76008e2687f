package models

import "github.com/qmedica/catalog-backend/pkg/enums"

// Setting is a row in the generic (type, value) lookup table backing
// admin-extensible enumerations such as countries and product types.
type Setting struct {
	ID    uint              `gorm:"column:id;primaryKey;autoIncrement"`
	Type  enums.SettingType `gorm:"column:type;not null;uniqueIndex:idx_settings_type_value"`
	Value string            `gorm:"column:value;not null;uniqueIndex:idx_settings_type_value"`
}
