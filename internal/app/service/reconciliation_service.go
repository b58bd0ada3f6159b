package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"github.com/nexapay/nexapay-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRecordNotFound  = errors.New("verification record not found")
	ErrTierNotFound    = errors.New("tier configuration not found")
	ErrAlreadyApproved = errors.New("approved verification cannot be restarted")
	ErrPhoneConflict   = errors.New("phone number already registered to another account")
)

// ReconcileInput carries one reconciliation request: bring the user's
// records for a tier's requirements up to date with an observed status.
type ReconcileInput struct {
	UserID       uint
	Tier         *model.TierConfig
	Requirements []model.TierRequirement
	Target       model.CanonicalStatus

	// Applicant is the canonicalized provider detail. Nil for lightweight
	// transitions that carry no payload (created/pending/reset/onHold).
	Applicant *provider.Applicant

	Provider         string
	ApplicantID      string
	VerificationType string
	Comment          string
}

type ReconciliationService interface {
	// Reconcile upserts one record per requirement and appends one audit
	// entry per write, inside a single transaction. An empty requirement
	// set is a warned no-op.
	Reconcile(input ReconcileInput) ([]model.VerificationRecord, error)
}

type reconciliationService struct {
	verificationRepo repository.VerificationRepository
	auditRepo        repository.AuditRepository
	userTierRepo     repository.UserTierRepository
	db               *gorm.DB
}

func NewReconciliationService(
	verificationRepo repository.VerificationRepository,
	auditRepo repository.AuditRepository,
	userTierRepo repository.UserTierRepository,
	db *gorm.DB,
) ReconciliationService {
	return &reconciliationService{
		verificationRepo: verificationRepo,
		auditRepo:        auditRepo,
		userTierRepo:     userTierRepo,
		db:               db,
	}
}

// recordMetadata is the derived, non-sensitive detail stored on a record.
// Document numbers are fingerprinted, never stored raw.
type recordMetadata struct {
	Address   provider.Address `json:"address,omitempty"`
	DOB       string           `json:"dob,omitempty"`
	Country   string           `json:"country,omitempty"`
	Documents []documentMeta   `json:"documents,omitempty"`
	EDD       provider.EDDInfo `json:"edd,omitempty"`
}

type documentMeta struct {
	Type        provider.DocumentType `json:"type"`
	Fingerprint string                `json:"fingerprint,omitempty"`
	Country     string                `json:"country,omitempty"`
}

func (s *reconciliationService) Reconcile(input ReconcileInput) ([]model.VerificationRecord, error) {
	if len(input.Requirements) == 0 {
		logger.Warn("Reconciliation called with empty requirement set", map[string]interface{}{
			"user_id": input.UserID,
			"target":  input.Target,
		})
		return nil, nil
	}

	logger.Info("Reconciling verification records", map[string]interface{}{
		"user_id":      input.UserID,
		"tier_id":      input.Tier.ID,
		"target":       input.Target,
		"requirements": len(input.Requirements),
	})

	var records []model.VerificationRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		verificationRepo := s.verificationRepo.WithTx(tx)
		auditRepo := s.auditRepo.WithTx(tx)
		userTierRepo := s.userTierRepo.WithTx(tx)

		for _, requirement := range input.Requirements {
			record, err := s.reconcileRequirement(verificationRepo, auditRepo, input, requirement)
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, *record)
			}
		}

		if input.Target == model.StatusApproved {
			if err := userTierRepo.EnsureExists(input.UserID, input.Tier.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *reconciliationService) reconcileRequirement(
	verificationRepo repository.VerificationRepository,
	auditRepo repository.AuditRepository,
	input ReconcileInput,
	requirement model.TierRequirement,
) (*model.VerificationRecord, error) {
	existing, err := verificationRepo.FindByUserAndRequirement(input.UserID, requirement.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()

	if existing == nil {
		record := &model.VerificationRecord{
			UserID:            input.UserID,
			TierConfigID:      input.Tier.ID,
			TierRequirementID: requirement.ID,
			Provider:          input.Provider,
			ApplicantID:       input.ApplicantID,
			Status:            input.Target,
			Attempts:          1,
			VerificationType:  input.VerificationType,
		}
		applyApplicant(record, input.Applicant, input.Target, now)

		if err := verificationRepo.Create(record); err != nil {
			return nil, err
		}

		entry := &model.StatusAuditEntry{
			VerificationRecordID: record.ID,
			OldStatus:            model.StatusNotStarted,
			NewStatus:            input.Target,
			Comment:              auditComment(input, "verification initiated"),
		}
		if err := auditRepo.Append(entry); err != nil {
			return nil, err
		}
		return record, nil
	}

	// Approved is terminal per requirement; callers guard restarts before
	// reconciliation, this is the backstop.
	if existing.Status == model.StatusApproved && input.Target != model.StatusApproved {
		logger.Warn("Skipping transition on approved verification record", map[string]interface{}{
			"record_id": existing.ID,
			"target":    input.Target,
		})
		return nil, nil
	}

	oldStatus := existing.Status
	existing.Status = input.Target
	existing.Attempts++
	if input.ApplicantID != "" {
		existing.ApplicantID = input.ApplicantID
	}
	if input.Provider != "" {
		existing.Provider = input.Provider
	}
	applyApplicant(existing, input.Applicant, input.Target, now)

	if err := verificationRepo.Update(existing); err != nil {
		return nil, err
	}

	entry := &model.StatusAuditEntry{
		VerificationRecordID: existing.ID,
		OldStatus:            oldStatus,
		NewStatus:            input.Target,
		Comment:              auditComment(input, ""),
	}
	if err := auditRepo.Append(entry); err != nil {
		return nil, err
	}
	return existing, nil
}

// applyApplicant copies canonicalized provider detail onto a record.
func applyApplicant(record *model.VerificationRecord, applicant *provider.Applicant, target model.CanonicalStatus, now time.Time) {
	switch target {
	case model.StatusSubmitted:
		if record.SubmittedAt == nil {
			submittedAt := now
			record.SubmittedAt = &submittedAt
		}
	case model.StatusApproved, model.StatusRejected, model.StatusResubmissionRequested:
		reviewedAt := now
		if applicant != nil && applicant.ReviewedAt != nil {
			reviewedAt = *applicant.ReviewedAt
		}
		record.ReviewedAt = &reviewedAt
	case model.StatusRestarted:
		record.ErrorMessage = ""
		record.RejectLabels = nil
	}

	if applicant == nil {
		return
	}

	if applicant.ApplicantID != "" {
		record.ApplicantID = applicant.ApplicantID
	}
	record.RejectLabels = applicant.RejectLabels
	if target == model.StatusRejected || target == model.StatusResubmissionRequested {
		record.ErrorMessage = applicant.FailureReason
	}

	meta := recordMetadata{
		Address: applicant.Address,
		DOB:     applicant.DOB,
		Country: applicant.Country,
		EDD:     applicant.EDD,
	}
	for _, doc := range applicant.IDDocuments {
		meta.Documents = append(meta.Documents, documentMeta{
			Type:        doc.Type,
			Fingerprint: util.Fingerprint(doc.Number),
			Country:     doc.Country,
		})
	}
	if encoded, err := json.Marshal(meta); err == nil {
		record.Metadata = string(encoded)
	}
}

func auditComment(input ReconcileInput, fallback string) string {
	if input.Comment != "" {
		return input.Comment
	}
	return fallback
}
