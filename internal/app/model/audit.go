package model

import "time"

// StatusAuditEntry is an append-only record of one verification status
// transition. Entries are never updated or deleted.
type StatusAuditEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	VerificationRecordID uint                `gorm:"not null;index" json:"verification_record_id"`
	VerificationRecord   *VerificationRecord `gorm:"foreignKey:VerificationRecordID" json:"-"`

	OldStatus CanonicalStatus `gorm:"type:varchar(30);not null" json:"old_status"`
	NewStatus CanonicalStatus `gorm:"type:varchar(30);not null" json:"new_status"`
	Comment   string          `gorm:"type:text" json:"comment"`
}

func (StatusAuditEntry) TableName() string {
	return "status_audit_entries"
}
