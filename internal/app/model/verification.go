package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CanonicalStatus is the provider-agnostic verification state.
type CanonicalStatus string

const (
	StatusNotStarted             CanonicalStatus = "not_started"
	StatusPending                CanonicalStatus = "pending"
	StatusInReview               CanonicalStatus = "in_review"
	StatusSubmitted              CanonicalStatus = "submitted"
	StatusApproved               CanonicalStatus = "approved"
	StatusRejected               CanonicalStatus = "rejected"
	StatusResubmissionRequested  CanonicalStatus = "resubmission_requested"
	StatusRestarted              CanonicalStatus = "restarted"
)

// IsTerminal reports whether the status ends the current attempt.
// A restarted transition may still reopen a rejected record.
func (s CanonicalStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanRestart reports whether a record in this status may be restarted.
// Approved records are never restarted.
func (s CanonicalStatus) CanRestart() bool {
	return s == StatusRejected || s == StatusResubmissionRequested ||
		s == StatusPending || s == StatusSubmitted || s == StatusInReview
}

// Valid reports whether s is a member of the canonical enum.
func (s CanonicalStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusPending, StatusInReview, StatusSubmitted,
		StatusApproved, StatusRejected, StatusResubmissionRequested, StatusRestarted:
		return true
	}
	return false
}

// VerificationRecord tracks one discrete check of a tier for one user.
// At most one non-deleted row exists per (user_id, tier_requirement_id);
// restarts reuse the row and bump the attempt counter.
type VerificationRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID            uint             `gorm:"not null;uniqueIndex:idx_verifications_user_requirement" json:"user_id"`
	User              *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TierConfigID      uint             `gorm:"not null;index" json:"tier_config_id"`
	TierRequirementID uint             `gorm:"not null;uniqueIndex:idx_verifications_user_requirement" json:"tier_requirement_id"`
	TierRequirement   *TierRequirement `gorm:"foreignKey:TierRequirementID" json:"tier_requirement,omitempty"`

	Provider    string          `gorm:"type:varchar(50);not null" json:"provider"`
	ApplicantID string          `gorm:"type:varchar(100);index" json:"applicant_id"`
	Status      CanonicalStatus `gorm:"type:varchar(30);not null;default:'not_started'" json:"status"`
	Attempts    int             `gorm:"not null;default:1" json:"attempts"`

	// VerificationType tags which workflow produced the record (e.g. "kyc", "liveness").
	VerificationType string `gorm:"type:varchar(30)" json:"verification_type"`

	// Metadata is a JSON blob of non-sensitive derived data such as the
	// applicant address and document-number fingerprints.
	Metadata     string         `gorm:"type:text" json:"metadata"`
	RejectLabels pq.StringArray `gorm:"type:text[]" json:"reject_labels"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

func (VerificationRecord) TableName() string {
	return "verification_records"
}
