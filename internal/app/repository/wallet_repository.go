package repository

import (
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"gorm.io/gorm"
)

type WalletRepository interface {
	// EnsureWallet creates the (user, currency) wallet if absent. Idempotent.
	EnsureWallet(userID uint, currency string) (*model.Wallet, error)
	FindByUser(userID uint) ([]model.Wallet, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) EnsureWallet(userID uint, currency string) (*model.Wallet, error) {
	wallet := model.Wallet{
		UserID:   userID,
		Currency: currency,
		Status:   model.WalletActive,
	}
	err := r.db.
		Where("user_id = ? AND currency = ?", userID, currency).
		FirstOrCreate(&wallet).Error
	if err != nil {
		logger.Error("Failed to ensure wallet", err, map[string]interface{}{
			"user_id":  userID,
			"currency": currency,
		})
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) FindByUser(userID uint) ([]model.Wallet, error) {
	var wallets []model.Wallet
	err := r.db.Where("user_id = ?", userID).Find(&wallets).Error
	if err != nil {
		return nil, err
	}
	return wallets, nil
}
