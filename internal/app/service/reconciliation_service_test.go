package service

import (
	"testing"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/db"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReconciliationTest(t *testing.T) (ReconciliationService, *gorm.DB, *model.User, *model.TierConfig) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	verificationRepo := repository.NewVerificationRepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	userTierRepo := repository.NewUserTierRepository(testDB)
	reconciler := NewReconciliationService(verificationRepo, auditRepo, userTierRepo, testDB)

	user := &model.User{
		Email:   "ada@example.com",
		Phone:   "+2348012345678",
		Country: "NGA",
		Role:    model.RoleUser,
	}
	testDB.Create(user)

	tier := &model.TierConfig{
		Name:      "Tier One",
		Country:   "NGA",
		LevelName: "basic-kyc-level",
		Requirements: []model.TierRequirement{
			{Name: "Identity Document", Code: "id_document"},
			{Name: "Liveness", Code: "liveness"},
		},
	}
	testDB.Create(tier)

	return reconciler, testDB, user, tier
}

func TestReconcile_CreatesRecordsAndInitialAudit(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	records, err := reconciler.Reconcile(ReconcileInput{
		UserID:       user.ID,
		Tier:         tier,
		Requirements: tier.Requirements,
		Target:       model.StatusPending,
		Provider:     "sumsub",
		ApplicantID:  "app-1",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, record := range records {
		assert.Equal(t, model.StatusPending, record.Status)
		assert.Equal(t, 1, record.Attempts)
		assert.Equal(t, "sumsub", record.Provider)
		assert.Equal(t, "app-1", record.ApplicantID)
	}

	var entries []model.StatusAuditEntry
	testDB.Find(&entries)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, model.StatusNotStarted, entry.OldStatus)
		assert.Equal(t, model.StatusPending, entry.NewStatus)
		assert.Equal(t, "verification initiated", entry.Comment)
	}
}

func TestReconcile_UpdateBumpsAttemptsAndAppendsAudit(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	_, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements,
		Target: model.StatusPending, Provider: "sumsub", ApplicantID: "app-1",
	})
	require.NoError(t, err)

	records, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements,
		Target: model.StatusSubmitted, Provider: "sumsub", ApplicantID: "app-1",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, record := range records {
		assert.Equal(t, model.StatusSubmitted, record.Status)
		assert.Equal(t, 2, record.Attempts)
		assert.NotNil(t, record.SubmittedAt)
	}

	// Still one row per requirement.
	var count int64
	testDB.Model(&model.VerificationRecord{}).Count(&count)
	assert.EqualValues(t, 2, count)

	var entries int64
	testDB.Model(&model.StatusAuditEntry{}).Count(&entries)
	assert.EqualValues(t, 4, entries)
}

func TestReconcile_ApprovedIsTerminal(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	_, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements,
		Target: model.StatusApproved, Provider: "sumsub", ApplicantID: "app-1",
	})
	require.NoError(t, err)

	// A later rejection must not overwrite the approval.
	records, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements,
		Target: model.StatusRejected, Provider: "sumsub", ApplicantID: "app-1",
	})
	require.NoError(t, err)
	assert.Empty(t, records)

	var stored []model.VerificationRecord
	testDB.Find(&stored)
	for _, record := range stored {
		assert.Equal(t, model.StatusApproved, record.Status)
	}

	// The skipped transition leaves no audit entry.
	var entries int64
	testDB.Model(&model.StatusAuditEntry{}).Count(&entries)
	assert.EqualValues(t, 2, entries)
}

func TestReconcile_ApprovalEnsuresUserTierIdempotently(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	for i := 0; i < 2; i++ {
		_, err := reconciler.Reconcile(ReconcileInput{
			UserID: user.ID, Tier: tier, Requirements: tier.Requirements,
			Target: model.StatusApproved, Provider: "sumsub", ApplicantID: "app-1",
		})
		require.NoError(t, err)
	}

	var tiers []model.UserTier
	testDB.Find(&tiers)
	require.Len(t, tiers, 1)
	assert.Equal(t, user.ID, tiers[0].UserID)
	assert.Equal(t, tier.ID, tiers[0].TierConfigID)
}

func TestReconcile_EmptyRequirementsIsNoOp(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	records, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: nil,
		Target: model.StatusPending,
	})
	require.NoError(t, err)
	assert.Nil(t, records)

	var count int64
	testDB.Model(&model.VerificationRecord{}).Count(&count)
	assert.Zero(t, count)
}

func TestReconcile_AppliesApplicantDetail(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	reviewedAt := time.Date(2026, 3, 10, 14, 25, 0, 0, time.UTC)
	applicant := &provider.Applicant{
		ApplicantID:   "app-detail",
		Country:       "NGA",
		DOB:           "1990-01-01",
		RejectLabels:  []string{"UNSATISFACTORY_PHOTOS"},
		FailureReason: "The uploaded photos are not clear enough",
		ReviewedAt:    &reviewedAt,
		IDDocuments: []provider.IDDocument{
			{Type: provider.DocNIN, Number: "12345678901", Country: "NGA"},
		},
	}

	_, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements[:1],
		Target: model.StatusResubmissionRequested, Applicant: applicant,
		Provider: "sumsub", ApplicantID: "app-detail",
	})
	require.NoError(t, err)

	var record model.VerificationRecord
	require.NoError(t, testDB.First(&record).Error)

	assert.Equal(t, "app-detail", record.ApplicantID)
	assert.Equal(t, []string{"UNSATISFACTORY_PHOTOS"}, []string(record.RejectLabels))
	assert.Equal(t, "The uploaded photos are not clear enough", record.ErrorMessage)
	require.NotNil(t, record.ReviewedAt)
	assert.Equal(t, reviewedAt.Unix(), record.ReviewedAt.Unix())

	// Raw document numbers never land in metadata, only fingerprints.
	assert.NotContains(t, record.Metadata, "12345678901")
	assert.Contains(t, record.Metadata, "fingerprint")
}

func TestReconcile_RestartClearsFailureState(t *testing.T) {
	reconciler, testDB, user, tier := setupReconciliationTest(t)

	applicant := &provider.Applicant{
		RejectLabels:  []string{"FORGERY"},
		FailureReason: "The document appears to be forged",
	}
	_, err := reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements[:1],
		Target: model.StatusRejected, Applicant: applicant,
		Provider: "sumsub", ApplicantID: "app-1",
	})
	require.NoError(t, err)

	_, err = reconciler.Reconcile(ReconcileInput{
		UserID: user.ID, Tier: tier, Requirements: tier.Requirements[:1],
		Target: model.StatusRestarted, Provider: "sumsub", ApplicantID: "app-1",
	})
	require.NoError(t, err)

	var record model.VerificationRecord
	require.NoError(t, testDB.First(&record).Error)
	assert.Equal(t, model.StatusRestarted, record.Status)
	assert.Empty(t, record.ErrorMessage)
	assert.Empty(t, []string(record.RejectLabels))
}
