package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/internal/storage"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"gorm.io/gorm"
)

// StartVerificationResult is what the client needs to open a vendor session.
type StartVerificationResult struct {
	Token    string `json:"token"`
	Provider string `json:"provider"`
	Level    string `json:"level"`
}

// VerificationStatus is the per-user lifecycle view.
type VerificationStatus struct {
	KYCVerified bool                       `json:"kyc_verified"`
	Records     []model.VerificationRecord `json:"records"`
	Tiers       []model.UserTier           `json:"tiers"`
}

// KYCService drives the user-facing verification lifecycle: session start,
// status reads, document archival and administrative resets.
type KYCService interface {
	StartVerification(ctx context.Context, userID uint, levelName, explicitProvider string) (*StartVerificationResult, error)
	GetStatus(userID uint) (*VerificationStatus, error)
	GetAuditTrail(userID, recordID uint) ([]model.StatusAuditEntry, error)
	ArchiveDocuments(ctx context.Context, userID uint) ([]string, error)
	ResetVerification(ctx context.Context, userID uint, levelName string) error
}

type kycService struct {
	registry *provider.Registry

	reconciler ReconciliationService

	verificationRepo repository.VerificationRepository
	auditRepo        repository.AuditRepository
	tierRepo         repository.TierRepository
	userRepo         repository.UserRepository
	userTierRepo     repository.UserTierRepository

	archive *storage.S3Storage
}

func NewKYCService(
	registry *provider.Registry,
	reconciler ReconciliationService,
	verificationRepo repository.VerificationRepository,
	auditRepo repository.AuditRepository,
	tierRepo repository.TierRepository,
	userRepo repository.UserRepository,
	userTierRepo repository.UserTierRepository,
	archive *storage.S3Storage,
) KYCService {
	return &kycService{
		registry:         registry,
		reconciler:       reconciler,
		verificationRepo: verificationRepo,
		auditRepo:        auditRepo,
		tierRepo:         tierRepo,
		userRepo:         userRepo,
		userTierRepo:     userTierRepo,
		archive:          archive,
	}
}

// StartVerification routes the user to the provider configured for their
// country, issues a vendor session token and seeds not-started records for
// every requirement of the requested level.
func (s *kycService) StartVerification(ctx context.Context, userID uint, levelName, explicitProvider string) (*StartVerificationResult, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tier, err := s.tierRepo.FindByLevelName(levelName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}

	existing, err := s.verificationRepo.FindByUserAndTier(userID, tier.ID)
	if err != nil {
		return nil, err
	}
	for _, record := range existing {
		if record.Status == model.StatusApproved {
			return nil, ErrAlreadyApproved
		}
	}

	adapter, err := s.registry.Route(user.Country, explicitProvider)
	if err != nil {
		return nil, err
	}

	token, err := adapter.IssueAccessToken(ctx, provider.AccessTokenRequest{
		ExternalUserID: strconv.FormatUint(uint64(userID), 10),
		Email:          user.Email,
		Phone:          user.Phone,
		LevelName:      levelName,
	})
	if err != nil {
		return nil, err
	}

	// Seed records only for requirements that have none yet; an in-flight
	// attempt keeps its state.
	if len(existing) == 0 {
		if _, err := s.reconciler.Reconcile(ReconcileInput{
			UserID:       userID,
			Tier:         tier,
			Requirements: tier.Requirements,
			Target:       model.StatusNotStarted,
			Provider:     adapter.Name(),
			Comment:      "verification initiated",
		}); err != nil {
			return nil, err
		}
	}

	logger.Info("Verification session started", map[string]interface{}{
		"user_id":    userID,
		"level_name": levelName,
		"provider":   adapter.Name(),
	})

	return &StartVerificationResult{
		Token:    token,
		Provider: adapter.Name(),
		Level:    levelName,
	}, nil
}

func (s *kycService) GetStatus(userID uint) (*VerificationStatus, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	records, err := s.verificationRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.userTierRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	return &VerificationStatus{
		KYCVerified: user.KYCVerified,
		Records:     records,
		Tiers:       tiers,
	}, nil
}

// GetAuditTrail returns the status history of one record. The record must
// belong to the requesting user.
func (s *kycService) GetAuditTrail(userID, recordID uint) ([]model.StatusAuditEntry, error) {
	records, err := s.verificationRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	owned := false
	for _, record := range records {
		if record.ID == recordID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, ErrRecordNotFound
	}

	return s.auditRepo.FindByRecordID(recordID)
}

// ArchiveDocuments fetches every document the provider holds for the user's
// applicant and stores durable copies. Returns the archived object keys.
func (s *kycService) ArchiveDocuments(ctx context.Context, userID uint) ([]string, error) {
	records, err := s.verificationRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	applicantID := ""
	providerName := ""
	for _, record := range records {
		if record.ApplicantID != "" {
			applicantID = record.ApplicantID
			providerName = record.Provider
			break
		}
	}
	if applicantID == "" {
		return nil, ErrRecordNotFound
	}

	adapter, err := s.registry.Route("", providerName)
	if err != nil {
		return nil, err
	}

	metadata, err := adapter.GetDocumentMetadata(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, doc := range metadata {
		content, contentType, err := adapter.GetDocumentContent(ctx, doc.InspectionID, doc.ID)
		if err != nil {
			logger.Error("Failed to fetch document content, skipping", err, map[string]interface{}{
				"applicant_id": applicantID,
				"document_id":  doc.ID,
			})
			continue
		}
		key, err := s.archive.ArchiveDocument(ctx, applicantID, doc.ID, content, contentType)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	logger.Info("Archived applicant documents", map[string]interface{}{
		"user_id":      userID,
		"applicant_id": applicantID,
		"archived":     len(keys),
	})
	return keys, nil
}

// ResetVerification restarts a user's attempt at a level. Approved records
// are never reset.
func (s *kycService) ResetVerification(ctx context.Context, userID uint, levelName string) error {
	tier, err := s.tierRepo.FindByLevelName(levelName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTierNotFound
		}
		return err
	}

	records, err := s.verificationRepo.FindByUserAndTier(userID, tier.ID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrRecordNotFound
	}

	applicantID := ""
	providerName := ""
	for _, record := range records {
		if record.Status == model.StatusApproved {
			return ErrAlreadyApproved
		}
		if record.ApplicantID != "" {
			applicantID = record.ApplicantID
			providerName = record.Provider
		}
	}

	if applicantID != "" {
		adapter, err := s.registry.Route("", providerName)
		if err != nil {
			return err
		}
		if err := adapter.ResetApplicant(ctx, applicantID); err != nil {
			return fmt.Errorf("provider reset failed: %w", err)
		}
	}

	_, err = s.reconciler.Reconcile(ReconcileInput{
		UserID:       userID,
		Tier:         tier,
		Requirements: tier.Requirements,
		Target:       model.StatusRestarted,
		Provider:     providerName,
		ApplicantID:  applicantID,
		Comment:      "verification reset by administrator",
	})
	return err
}
