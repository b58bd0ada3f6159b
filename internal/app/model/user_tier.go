package model

import "time"

// UserTier marks that a user has reached a verification tier. Created
// idempotently when every requirement of the tier is approved.
type UserTier struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID       uint        `gorm:"not null;uniqueIndex:idx_user_tiers_user_tier" json:"user_id"`
	TierConfigID uint        `gorm:"not null;uniqueIndex:idx_user_tiers_user_tier" json:"tier_config_id"`
	TierConfig   *TierConfig `gorm:"foreignKey:TierConfigID" json:"tier_config,omitempty"`
}

func (UserTier) TableName() string {
	return "user_tiers"
}
