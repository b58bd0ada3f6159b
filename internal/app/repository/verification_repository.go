package repository

import (
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"gorm.io/gorm"
)

type VerificationRepository interface {
	// WithTx returns a repository bound to the given transaction so that
	// find-or-create and the subsequent update share one boundary.
	WithTx(tx *gorm.DB) VerificationRepository

	Create(record *model.VerificationRecord) error
	Update(record *model.VerificationRecord) error
	FindByUserAndRequirement(userID, requirementID uint) (*model.VerificationRecord, error)
	FindByUserAndTier(userID, tierConfigID uint) ([]model.VerificationRecord, error)
	FindByUser(userID uint) ([]model.VerificationRecord, error)
	FindInFlightByUser(userID uint) ([]model.VerificationRecord, error)
	FindApprovedReviewedBefore(cutoff time.Time) ([]model.VerificationRecord, error)
	ListAll() ([]model.VerificationRecord, error)
	SoftDelete(id uint) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) WithTx(tx *gorm.DB) VerificationRepository {
	return &verificationRepository{db: tx}
}

func (r *verificationRepository) Create(record *model.VerificationRecord) error {
	logger.Debug("Creating verification record", map[string]interface{}{
		"user_id":        record.UserID,
		"requirement_id": record.TierRequirementID,
		"status":         record.Status,
	})

	if err := r.db.Create(record).Error; err != nil {
		logger.Error("Failed to create verification record", err, map[string]interface{}{
			"user_id":        record.UserID,
			"requirement_id": record.TierRequirementID,
		})
		return err
	}
	return nil
}

func (r *verificationRepository) Update(record *model.VerificationRecord) error {
	logger.Debug("Updating verification record", map[string]interface{}{
		"record_id": record.ID,
		"status":    record.Status,
		"attempts":  record.Attempts,
	})

	if err := r.db.Save(record).Error; err != nil {
		logger.Error("Failed to update verification record", err, map[string]interface{}{
			"record_id": record.ID,
		})
		return err
	}
	return nil
}

func (r *verificationRepository) FindByUserAndRequirement(userID, requirementID uint) (*model.VerificationRecord, error) {
	var record model.VerificationRecord
	err := r.db.
		Where("user_id = ? AND tier_requirement_id = ?", userID, requirementID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *verificationRepository) FindByUserAndTier(userID, tierConfigID uint) ([]model.VerificationRecord, error) {
	var records []model.VerificationRecord
	err := r.db.
		Where("user_id = ? AND tier_config_id = ?", userID, tierConfigID).
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to find verification records by tier", err, map[string]interface{}{
			"user_id":        userID,
			"tier_config_id": tierConfigID,
		})
		return nil, err
	}
	return records, nil
}

func (r *verificationRepository) FindByUser(userID uint) ([]model.VerificationRecord, error) {
	var records []model.VerificationRecord
	err := r.db.
		Preload("TierRequirement").
		Where("user_id = ?", userID).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindInFlightByUser returns records that are neither approved nor rejected.
func (r *verificationRepository) FindInFlightByUser(userID uint) ([]model.VerificationRecord, error) {
	var records []model.VerificationRecord
	err := r.db.
		Where("user_id = ? AND status NOT IN ?", userID,
			[]model.CanonicalStatus{model.StatusApproved, model.StatusRejected}).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindApprovedReviewedBefore returns approved records last reviewed before
// the cutoff; the AML recheck sweep runs over these.
func (r *verificationRepository) FindApprovedReviewedBefore(cutoff time.Time) ([]model.VerificationRecord, error) {
	var records []model.VerificationRecord
	err := r.db.
		Where("status = ? AND reviewed_at < ?", model.StatusApproved, cutoff).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *verificationRepository) ListAll() ([]model.VerificationRecord, error) {
	var records []model.VerificationRecord
	err := r.db.
		Preload("User").
		Preload("TierRequirement").
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *verificationRepository) SoftDelete(id uint) error {
	return r.db.Delete(&model.VerificationRecord{}, id).Error
}
