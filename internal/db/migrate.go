package db

import (
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// Migrate runs gorm automigrations for all core models.
func Migrate() error {
	logger.Info("Running database migrations", nil)

	err := DB.AutoMigrate(
		&model.User{},
		&model.TierConfig{},
		&model.TierRequirement{},
		&model.VerificationRecord{},
		&model.StatusAuditEntry{},
		&model.UserTier{},
		&model.Wallet{},
		&model.Notification{},
	)
	if err != nil {
		logger.Error("Database migration failed", err)
		return err
	}

	logger.Info("Database migrations completed", nil)
	return nil
}
