package models

import (
	"time"

	"gorm.io/datatypes"
)

// SettingsRecord stores one settings document under its key.
type SettingsRecord struct {
	Key       string         `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb" json:"value"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (SettingsRecord) TableName() string { return "settings" }
