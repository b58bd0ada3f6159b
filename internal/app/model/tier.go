package model

import (
	"time"

	"gorm.io/gorm"
)

// TierConfig is a named verification level for a country. The tier graph is
// owned by configuration management; this service only reads it.
type TierConfig struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"type:varchar(100);not null" json:"name"`
	Country string `gorm:"type:varchar(3);not null;index" json:"country"`

	// LevelName is the provider-side workflow level that maps to this tier.
	LevelName string `gorm:"type:varchar(100);not null;uniqueIndex" json:"level_name"`

	Requirements []TierRequirement `gorm:"foreignKey:TierConfigID" json:"requirements,omitempty"`
}

func (TierConfig) TableName() string {
	return "tier_configs"
}

// TierRequirement is one discrete verifiable check within a tier.
type TierRequirement struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TierConfigID uint        `gorm:"not null;index" json:"tier_config_id"`
	TierConfig   *TierConfig `gorm:"foreignKey:TierConfigID" json:"-"`

	Name string `gorm:"type:varchar(100);not null" json:"name"`
	Code string `gorm:"type:varchar(50);not null" json:"code"` // e.g. id_document, liveness, address
}

func (TierRequirement) TableName() string {
	return "tier_requirements"
}
