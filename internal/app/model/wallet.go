package model

import (
	"time"

	"gorm.io/gorm"
)

type WalletStatus string

const (
	WalletActive   WalletStatus = "active"
	WalletInactive WalletStatus = "inactive"
)

// Wallet is one currency balance container per user. Provisioned
// idempotently after a successful tier-one verification.
type Wallet struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID   uint         `gorm:"not null;uniqueIndex:idx_wallets_user_currency" json:"user_id"`
	Currency string       `gorm:"type:varchar(10);not null;uniqueIndex:idx_wallets_user_currency" json:"currency"`
	Status   WalletStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
}

func (Wallet) TableName() string {
	return "wallets"
}
