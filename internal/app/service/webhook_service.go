package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/nexapay/nexapay-backend/config"
	apperrors "github.com/nexapay/nexapay-backend/internal/errors"
	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/lock"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/internal/provider/sumsub"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"gorm.io/gorm"
)

// StatusPublisher pushes a status change to a user's live sessions.
type StatusPublisher interface {
	PublishStatus(userID uint, levelName string, status model.CanonicalStatus)
}

// WebhookService processes inbound verification events. Transitions are
// reconciled against the internal records; the internal user record, not the
// vendor payload, is the authority for who gets notified.
type WebhookService interface {
	ProcessEvent(ctx context.Context, event *sumsub.WebhookEvent) error
}

type webhookService struct {
	cfg *config.SumsubConfig

	adapter  provider.Adapter
	locker   lock.Locker
	reconciler ReconciliationService

	verificationRepo repository.VerificationRepository
	auditRepo        repository.AuditRepository
	tierRepo         repository.TierRepository
	userRepo         repository.UserRepository

	walletProvisioner  WalletProvisioner
	accountProvisioner AccountProvisioner
	pointsService      PointsService
	depositMonitor     DepositMonitor
	notifier           Notifier
	publisher          StatusPublisher

	db *gorm.DB
}

func NewWebhookService(
	cfg *config.SumsubConfig,
	adapter provider.Adapter,
	locker lock.Locker,
	reconciler ReconciliationService,
	verificationRepo repository.VerificationRepository,
	auditRepo repository.AuditRepository,
	tierRepo repository.TierRepository,
	userRepo repository.UserRepository,
	walletProvisioner WalletProvisioner,
	accountProvisioner AccountProvisioner,
	pointsService PointsService,
	depositMonitor DepositMonitor,
	notifier Notifier,
	publisher StatusPublisher,
	db *gorm.DB,
) WebhookService {
	return &webhookService{
		cfg:                cfg,
		adapter:            adapter,
		locker:             locker,
		reconciler:         reconciler,
		verificationRepo:   verificationRepo,
		auditRepo:          auditRepo,
		tierRepo:           tierRepo,
		userRepo:           userRepo,
		walletProvisioner:  walletProvisioner,
		accountProvisioner: accountProvisioner,
		pointsService:      pointsService,
		depositMonitor:     depositMonitor,
		notifier:           notifier,
		publisher:          publisher,
		db:                 db,
	}
}

func (s *webhookService) ProcessEvent(ctx context.Context, event *sumsub.WebhookEvent) error {
	logger.Info("Processing verification webhook event", map[string]interface{}{
		"type":             event.Type,
		"applicant_id":     event.ApplicantID,
		"external_user_id": event.ExternalUserID,
		"level_name":       event.LevelName,
		"correlation_id":   event.CorrelationID,
	})

	switch event.Type {
	case sumsub.EventApplicantKytTxnApproved,
		sumsub.EventApplicantKytTxnRejected,
		sumsub.EventApplicantKytTxnOnHold:
		return s.handleKytEvent(ctx, event)
	}

	userID, ok := s.parseExternalUserID(event.ExternalUserID)
	if !ok {
		return nil
	}

	switch event.Type {
	case sumsub.EventApplicantCreated:
		return s.handleLightweight(event, userID, model.StatusPending, "applicant created at provider")

	case sumsub.EventApplicantPending:
		// The liveness workflow has no document review step; pending there
		// means the capture was submitted.
		if event.LevelName == s.cfg.LivenessLevel {
			return s.handleLightweight(event, userID, model.StatusSubmitted, "liveness check submitted")
		}
		return s.handleLightweight(event, userID, model.StatusPending, "documents submitted, review pending")

	case sumsub.EventApplicantOnHold:
		return s.handleLightweight(event, userID, model.StatusInReview, "review placed on hold")

	case sumsub.EventApplicantReset:
		return s.handleLightweight(event, userID, model.StatusRestarted, "verification reset at provider")

	case sumsub.EventApplicantReviewed:
		return s.handleReviewed(ctx, event, userID)

	default:
		logger.Debug("Ignoring unrecognized webhook event type", map[string]interface{}{
			"type": event.Type,
		})
		return nil
	}
}

// handleLightweight reconciles a transition that carries no review payload.
func (s *webhookService) handleLightweight(event *sumsub.WebhookEvent, userID uint, target model.CanonicalStatus, comment string) error {
	tier, ok := s.lookupTier(event.LevelName)
	if !ok {
		return nil
	}

	_, err := s.reconciler.Reconcile(ReconcileInput{
		UserID:           userID,
		Tier:             tier,
		Requirements:     tier.Requirements,
		Target:           target,
		Provider:         s.adapter.Name(),
		ApplicantID:      event.ApplicantID,
		VerificationType: s.verificationType(event.LevelName),
		Comment:          comment,
	})
	if err != nil {
		return err
	}

	s.publisher.PublishStatus(userID, event.LevelName, target)
	return nil
}

// handleReviewed processes a completed review. Reviews for one subject are
// serialized under a per-subject lock so an approval and a rejection arriving
// together cannot interleave.
func (s *webhookService) handleReviewed(ctx context.Context, event *sumsub.WebhookEvent, userID uint) error {
	release, err := s.locker.Acquire(ctx, "applicantReviewed:"+event.ExternalUserID)
	if err != nil {
		return err
	}
	defer release()

	if event.ReviewResult == nil {
		logger.Warn("Reviewed event without review result, skipping", map[string]interface{}{
			"applicant_id": event.ApplicantID,
		})
		return nil
	}

	switch event.ReviewResult.ReviewAnswer {
	case sumsub.AnswerGreen:
		return s.handleGreenReview(ctx, event, userID)
	case sumsub.AnswerRed:
		return s.handleRedReview(ctx, event, userID)
	default:
		logger.Warn("Reviewed event with unrecognized answer, skipping", map[string]interface{}{
			"applicant_id": event.ApplicantID,
			"answer":       event.ReviewResult.ReviewAnswer,
		})
		return nil
	}
}

// handleGreenReview applies an approval. Only the terminal level of tier one
// completes the full success chain; green reviews for intermediate levels are
// recorded nowhere and acknowledged silently.
func (s *webhookService) handleGreenReview(ctx context.Context, event *sumsub.WebhookEvent, userID uint) error {
	if event.LevelName != s.cfg.TierOneTerminalLevel {
		logger.Debug("Green review for non-terminal level, no action", map[string]interface{}{
			"applicant_id": event.ApplicantID,
			"level_name":   event.LevelName,
		})
		return nil
	}

	tier, ok := s.lookupTier(event.LevelName)
	if !ok {
		return nil
	}

	user, ok := s.lookupUser(userID)
	if !ok {
		return nil
	}

	applicant, err := s.adapter.GetApplicant(ctx, event.ApplicantID)
	if err != nil {
		return err
	}

	if err := s.applyProfile(user, applicant); err != nil {
		return err
	}

	records, err := s.reconciler.Reconcile(ReconcileInput{
		UserID:           userID,
		Tier:             tier,
		Requirements:     tier.Requirements,
		Target:           model.StatusApproved,
		Applicant:        applicant,
		Provider:         s.adapter.Name(),
		ApplicantID:      event.ApplicantID,
		VerificationType: s.verificationType(event.LevelName),
		Comment:          "review completed with green answer",
	})
	if err != nil {
		return err
	}

	if !user.KYCVerified {
		user.KYCVerified = true
		if err := s.userRepo.Update(user); err != nil {
			logger.Error("Failed to flag user as verified", err, map[string]interface{}{
				"user_id": userID,
			})
		}
	}

	s.runApprovalSideEffects(ctx, user, event)
	s.publisher.PublishStatus(userID, event.LevelName, model.StatusApproved)

	logger.Info("Verification approved", map[string]interface{}{
		"user_id":      userID,
		"applicant_id": event.ApplicantID,
		"records":      len(records),
	})
	return nil
}

// handleRedReview applies a rejection. A RETRY reject type routes down the
// resubmission path; FINAL, or an absent reject type, is a hard rejection.
func (s *webhookService) handleRedReview(ctx context.Context, event *sumsub.WebhookEvent, userID uint) error {
	tier, ok := s.lookupTier(event.LevelName)
	if !ok {
		return nil
	}

	user, ok := s.lookupUser(userID)
	if !ok {
		return nil
	}

	applicant, err := s.adapter.GetApplicant(ctx, event.ApplicantID)
	if err != nil {
		return err
	}

	target := model.StatusRejected
	comment := "review completed with final rejection"
	if applicant.RejectType == sumsub.RejectTypeRetry {
		target = model.StatusResubmissionRequested
		comment = "review completed, resubmission requested"
	}

	if _, err := s.reconciler.Reconcile(ReconcileInput{
		UserID:           userID,
		Tier:             tier,
		Requirements:     tier.Requirements,
		Target:           target,
		Applicant:        applicant,
		Provider:         s.adapter.Name(),
		ApplicantID:      event.ApplicantID,
		VerificationType: s.verificationType(event.LevelName),
		Comment:          comment,
	}); err != nil {
		return err
	}

	reasons := parseFailureLines(applicant.FailureReason)
	if target == model.StatusResubmissionRequested {
		corrections := parseFailureLines(applicant.Corrections)
		if err := s.notifier.NotifyResubmission(user, reasons, corrections); err != nil {
			logger.Error("Failed to send resubmission notification", err, map[string]interface{}{
				"user_id": userID,
			})
		}
	} else {
		if err := s.notifier.NotifyRejected(user, reasons); err != nil {
			logger.Error("Failed to send rejection notification", err, map[string]interface{}{
				"user_id": userID,
			})
		}
	}

	s.publisher.PublishStatus(userID, event.LevelName, target)
	return nil
}

// handleKytEvent routes transaction-monitoring outcomes to the deposit
// monitor. Only finance transactions are acted on; monitor failures are
// logged, never raised, so the vendor does not retry a consumed event.
func (s *webhookService) handleKytEvent(ctx context.Context, event *sumsub.WebhookEvent) error {
	if event.KytTxnType != sumsub.TxnTypeFinance {
		logger.Debug("Ignoring non-finance transaction event", map[string]interface{}{
			"txn_id":   event.KytTxnID,
			"txn_type": event.KytTxnType,
		})
		return nil
	}

	var err error
	switch event.Type {
	case sumsub.EventApplicantKytTxnApproved:
		err = s.depositMonitor.ContinueDeposit(ctx, event.KytTxnID)
	case sumsub.EventApplicantKytTxnRejected:
		err = s.depositMonitor.FailDeposit(ctx, event.KytTxnID)
	case sumsub.EventApplicantKytTxnOnHold:
		err = s.depositMonitor.HoldDeposit(ctx, event.KytTxnID)
	}
	if err != nil {
		logger.Error("Deposit monitor dispatch failed", err, map[string]interface{}{
			"type":   event.Type,
			"txn_id": event.KytTxnID,
		})
	}
	return nil
}

// applyProfile copies verified identity data onto the internal user record.
// A phone number already claimed by another account force-rejects every
// in-flight record for this user and surfaces the conflict.
func (s *webhookService) applyProfile(user *model.User, applicant *provider.Applicant) error {
	if applicant.FirstName != "" {
		user.FirstName = applicant.FirstName
	}
	if applicant.LastName != "" {
		user.LastName = applicant.LastName
	}
	if applicant.MiddleName != "" {
		user.MiddleName = applicant.MiddleName
	}
	if dob := parseDOB(applicant.DOB); dob != nil {
		user.DOB = dob
	}
	if applicant.Country != "" {
		user.Country = applicant.Country
	}
	if applicant.Address.Street != "" {
		user.Address = applicant.Address.Street
	}
	if applicant.Address.City != "" {
		user.City = applicant.Address.City
	}
	if applicant.Address.State != "" {
		user.State = applicant.Address.State
	}
	if applicant.Address.Postcode != "" {
		user.Postcode = applicant.Address.Postcode
	}
	if applicant.Phone != "" {
		user.Phone = applicant.Phone
	}

	err := s.userRepo.Update(user)
	if err == nil {
		return nil
	}

	if apperrors.IsUniqueViolation(err, "phone") {
		logger.Warn("Verified phone number belongs to another account", map[string]interface{}{
			"user_id": user.ID,
		})
		if rejectErr := s.forceRejectInFlight(user.ID, "phone number already registered to another account"); rejectErr != nil {
			logger.Error("Failed to force-reject in-flight records", rejectErr, map[string]interface{}{
				"user_id": user.ID,
			})
		}
		return ErrPhoneConflict
	}
	return err
}

// forceRejectInFlight rejects every record for the user that is neither
// approved nor rejected, with audit entries, in one transaction.
func (s *webhookService) forceRejectInFlight(userID uint, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		verificationRepo := s.verificationRepo.WithTx(tx)
		auditRepo := s.auditRepo.WithTx(tx)

		records, err := verificationRepo.FindInFlightByUser(userID)
		if err != nil {
			return err
		}

		for i := range records {
			record := &records[i]
			oldStatus := record.Status
			record.Status = model.StatusRejected
			record.ErrorMessage = reason
			record.Attempts++
			if err := verificationRepo.Update(record); err != nil {
				return err
			}
			entry := &model.StatusAuditEntry{
				VerificationRecordID: record.ID,
				OldStatus:            oldStatus,
				NewStatus:            model.StatusRejected,
				Comment:              reason,
			}
			if err := auditRepo.Append(entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// runApprovalSideEffects fires the post-approval chain. Each effect failure
// is logged and swallowed; the approval itself already committed.
func (s *webhookService) runApprovalSideEffects(ctx context.Context, user *model.User, event *sumsub.WebhookEvent) {
	if err := s.walletProvisioner.ProvisionDefaultWallets(user.ID); err != nil {
		logger.Error("Failed to provision wallets after approval", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
	if err := s.accountProvisioner.CreateBlockchainAccount(ctx, user.ID); err != nil {
		logger.Error("Failed to create blockchain account after approval", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
	if err := s.pointsService.CreditVerificationBonus(user.ID, event.ApplicantID); err != nil {
		logger.Error("Failed to credit verification bonus", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
	if err := s.notifier.NotifyApproved(user); err != nil {
		logger.Error("Failed to send approval notification", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}
}

func (s *webhookService) parseExternalUserID(externalUserID string) (uint, bool) {
	id, err := strconv.ParseUint(externalUserID, 10, 64)
	if err != nil || id == 0 {
		logger.Warn("Webhook event with unmappable external user id, skipping", map[string]interface{}{
			"external_user_id": externalUserID,
		})
		return 0, false
	}
	return uint(id), true
}

// lookupTier resolves the event level name to a tier. An unknown level is a
// warned skip, not a failure; level rollouts at the vendor may lead the
// database.
func (s *webhookService) lookupTier(levelName string) (*model.TierConfig, bool) {
	tier, err := s.tierRepo.FindByLevelName(levelName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("No tier configured for level, skipping event", map[string]interface{}{
				"level_name": levelName,
			})
		} else {
			logger.Error("Failed to look up tier for level", err, map[string]interface{}{
				"level_name": levelName,
			})
		}
		return nil, false
	}
	return tier, true
}

func (s *webhookService) lookupUser(userID uint) (*model.User, bool) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		logger.Warn("No user for webhook event, skipping", map[string]interface{}{
			"user_id": userID,
		})
		return nil, false
	}
	return user, true
}

func (s *webhookService) verificationType(levelName string) string {
	if levelName == s.cfg.LivenessLevel {
		return "liveness"
	}
	return "kyc"
}

// parseDOB parses the provider's "2006-01-02" date of birth. Unparseable
// values yield nil and leave the stored value untouched.
func parseDOB(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// parseFailureLines splits a multi-line failure text into clean reason lines,
// stripping list markers.
func parseFailureLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "•")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
