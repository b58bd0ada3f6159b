package repository

import (
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserTierRepository interface {
	WithTx(tx *gorm.DB) UserTierRepository

	// EnsureExists creates the tier-reached record if absent. Idempotent.
	EnsureExists(userID, tierConfigID uint) error
	FindByUser(userID uint) ([]model.UserTier, error)
}

type userTierRepository struct {
	db *gorm.DB
}

func NewUserTierRepository(db *gorm.DB) UserTierRepository {
	return &userTierRepository{db: db}
}

func (r *userTierRepository) WithTx(tx *gorm.DB) UserTierRepository {
	return &userTierRepository{db: tx}
}

func (r *userTierRepository) EnsureExists(userID, tierConfigID uint) error {
	tier := model.UserTier{
		UserID:       userID,
		TierConfigID: tierConfigID,
	}
	err := r.db.
		Where("user_id = ? AND tier_config_id = ?", userID, tierConfigID).
		FirstOrCreate(&tier).Error
	if err != nil {
		logger.Error("Failed to ensure user tier record", err, map[string]interface{}{
			"user_id":        userID,
			"tier_config_id": tierConfigID,
		})
		return err
	}
	return nil
}

func (r *userTierRepository) FindByUser(userID uint) ([]model.UserTier, error) {
	var tiers []model.UserTier
	err := r.db.
		Preload("TierConfig").
		Where("user_id = ?", userID).
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
