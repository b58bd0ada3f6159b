package scheduler

import (
	"context"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// recheckAfter is how long an approval stays fresh before the periodic AML
// sweep asks the provider for a recheck.
const recheckAfter = 180 * 24 * time.Hour

// AMLScheduler periodically requests AML rechecks for long-standing
// approvals.
type AMLScheduler struct {
	cron             *cron.Cron
	verificationRepo repository.VerificationRepository
	registry         *provider.Registry
}

func NewAMLScheduler(verificationRepo repository.VerificationRepository, registry *provider.Registry) *AMLScheduler {
	return &AMLScheduler{
		cron:             cron.New(),
		verificationRepo: verificationRepo,
		registry:         registry,
	}
}

func (s *AMLScheduler) Start() error {
	// Daily at 03:00.
	_, err := s.cron.AddFunc("0 3 * * *", s.runSweep)
	if err != nil {
		logger.Error("Failed to add cron job for AML recheck sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("AML recheck scheduler started (daily at 3:00 AM)", nil)
	return nil
}

func (s *AMLScheduler) Stop() {
	logger.Info("Stopping AML recheck scheduler...", nil)
	s.cron.Stop()
	logger.Info("AML recheck scheduler stopped", nil)
}

func (s *AMLScheduler) runSweep() {
	logger.Info("Starting scheduled AML recheck sweep", nil)

	cutoff := time.Now().Add(-recheckAfter)
	records, err := s.verificationRepo.FindApprovedReviewedBefore(cutoff)
	if err != nil {
		logger.Error("Failed to list records for AML recheck", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// One applicant may back several requirement records; recheck each
	// applicant once.
	seen := make(map[string]bool)
	requested := 0
	for _, record := range records {
		if record.ApplicantID == "" || seen[record.ApplicantID] {
			continue
		}
		seen[record.ApplicantID] = true

		adapter, err := s.registry.Route("", record.Provider)
		if err != nil {
			logger.Error("No adapter for record provider, skipping recheck", err, map[string]interface{}{
				"record_id": record.ID,
				"provider":  record.Provider,
			})
			continue
		}

		if err := adapter.RequestAMLCheck(ctx, record.ApplicantID); err != nil {
			logger.Error("Failed to request AML recheck", err, map[string]interface{}{
				"applicant_id": record.ApplicantID,
			})
			continue
		}
		requested++
	}

	logger.Info("Completed AML recheck sweep", map[string]interface{}{
		"candidates": len(records),
		"requested":  requested,
	})
}
