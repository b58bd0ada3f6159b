package repository

import (
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"gorm.io/gorm"
)

// AuditRepository is append-only: entries are never updated or deleted.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Append(entry *model.StatusAuditEntry) error
	FindByRecordID(recordID uint) ([]model.StatusAuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepository{db: tx}
}

func (r *auditRepository) Append(entry *model.StatusAuditEntry) error {
	logger.Debug("Appending status audit entry", map[string]interface{}{
		"record_id":  entry.VerificationRecordID,
		"old_status": entry.OldStatus,
		"new_status": entry.NewStatus,
	})

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to append status audit entry", err, map[string]interface{}{
			"record_id": entry.VerificationRecordID,
		})
		return err
	}
	return nil
}

func (r *auditRepository) FindByRecordID(recordID uint) ([]model.StatusAuditEntry, error) {
	var entries []model.StatusAuditEntry
	err := r.db.
		Where("verification_record_id = ?", recordID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
