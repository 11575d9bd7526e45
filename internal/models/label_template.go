package models

import (
	"time"

	"gorm.io/datatypes"
)

// LabelTemplate is the stored form of a label design. Elements are kept as a
// JSON document in the portable element format.
type LabelTemplate struct {
	ID              string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Width           float64        `gorm:"not null" json:"width"`
	Height          float64        `gorm:"not null" json:"height"`
	BackgroundColor string         `gorm:"type:varchar(32)" json:"backgroundColor"`
	BorderWidth     float64        `json:"borderWidth"`
	BorderColor     string         `gorm:"type:varchar(32)" json:"borderColor"`
	Elements        datatypes.JSON `gorm:"type:jsonb" json:"elements"`
	IsDefault       bool           `gorm:"default:false;index" json:"isDefault"`
	IsActive        bool           `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LabelTemplate) TableName() string { return "label_templates" }
