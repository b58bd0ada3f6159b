package service

import (
	"context"
	"testing"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/db"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupKYCServiceTest(t *testing.T) (KYCService, *gorm.DB, *model.User, *model.TierConfig, *fakeAdapter) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	verificationRepo := repository.NewVerificationRepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	tierRepo := repository.NewTierRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	userTierRepo := repository.NewUserTierRepository(testDB)
	reconciler := NewReconciliationService(verificationRepo, auditRepo, userTierRepo, testDB)

	adapter := &fakeAdapter{}
	registry := provider.NewRegistry(map[string]string{"NGA": "sumsub"})
	registry.Register(adapter)

	kycService := NewKYCService(
		registry,
		reconciler,
		verificationRepo,
		auditRepo,
		tierRepo,
		userRepo,
		userTierRepo,
		nil,
	)

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

	return kycService, testDB, user, tier, adapter
}

func TestStartVerification_IssuesTokenAndSeedsRecords(t *testing.T) {
	kycService, testDB, user, _, _ := setupKYCServiceTest(t)

	result, err := kycService.StartVerification(context.Background(), user.ID, "basic-kyc-level", "")
	require.NoError(t, err)
	assert.Equal(t, "token", result.Token)
	assert.Equal(t, "sumsub", result.Provider)
	assert.Equal(t, "basic-kyc-level", result.Level)

	var records []model.VerificationRecord
	testDB.Find(&records)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, model.StatusNotStarted, record.Status)
		assert.Equal(t, "sumsub", record.Provider)
	}
}

func TestStartVerification_SecondStartKeepsExistingRecords(t *testing.T) {
	kycService, testDB, user, _, _ := setupKYCServiceTest(t)

	_, err := kycService.StartVerification(context.Background(), user.ID, "basic-kyc-level", "")
	require.NoError(t, err)
	_, err = kycService.StartVerification(context.Background(), user.ID, "basic-kyc-level", "")
	require.NoError(t, err)

	var count int64
	testDB.Model(&model.VerificationRecord{}).Count(&count)
	assert.EqualValues(t, 2, count)

	// A restart must not touch the attempt counter either.
	var record model.VerificationRecord
	require.NoError(t, testDB.First(&record).Error)
	assert.Equal(t, 1, record.Attempts)
}

func TestStartVerification_Errors(t *testing.T) {
	kycService, testDB, user, tier, _ := setupKYCServiceTest(t)

	t.Run("unknown user", func(t *testing.T) {
		_, err := kycService.StartVerification(context.Background(), 999, "basic-kyc-level", "")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := kycService.StartVerification(context.Background(), user.ID, "no-such-level", "")
		assert.ErrorIs(t, err, ErrTierNotFound)
	})

	t.Run("unmapped country fails closed", func(t *testing.T) {
		ghost := &model.User{Email: "ghost@example.com", Country: "FRA"}
		testDB.Create(ghost)

		_, err := kycService.StartVerification(context.Background(), ghost.ID, "basic-kyc-level", "")
		assert.ErrorIs(t, err, provider.ErrNotConfigured)
	})

	t.Run("already approved", func(t *testing.T) {
		testDB.Create(&model.VerificationRecord{
			UserID:            user.ID,
			TierConfigID:      tier.ID,
			TierRequirementID: tier.Requirements[0].ID,
			Provider:          "sumsub",
			Status:            model.StatusApproved,
			Attempts:          1,
		})

		_, err := kycService.StartVerification(context.Background(), user.ID, "basic-kyc-level", "")
		assert.ErrorIs(t, err, ErrAlreadyApproved)
	})
}

func TestGetStatus(t *testing.T) {
	kycService, testDB, user, tier, _ := setupKYCServiceTest(t)

	testDB.Create(&model.VerificationRecord{
		UserID:            user.ID,
		TierConfigID:      tier.ID,
		TierRequirementID: tier.Requirements[0].ID,
		Provider:          "sumsub",
		Status:            model.StatusApproved,
		Attempts:          1,
	})
	testDB.Create(&model.UserTier{UserID: user.ID, TierConfigID: tier.ID})
	testDB.Model(&model.User{}).Where("id = ?", user.ID).Update("kyc_verified", true)

	status, err := kycService.GetStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, status.KYCVerified)
	require.Len(t, status.Records, 1)
	assert.Equal(t, model.StatusApproved, status.Records[0].Status)
	require.Len(t, status.Tiers, 1)
}

func TestGetAuditTrail_OwnershipEnforced(t *testing.T) {
	kycService, testDB, user, tier, _ := setupKYCServiceTest(t)

	record := &model.VerificationRecord{
		UserID:            user.ID,
		TierConfigID:      tier.ID,
		TierRequirementID: tier.Requirements[0].ID,
		Provider:          "sumsub",
		Status:            model.StatusPending,
		Attempts:          1,
	}
	testDB.Create(record)
	testDB.Create(&model.StatusAuditEntry{
		VerificationRecordID: record.ID,
		OldStatus:            model.StatusNotStarted,
		NewStatus:            model.StatusPending,
	})

	entries, err := kycService.GetAuditTrail(user.ID, record.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	other := &model.User{Email: "other@example.com", Country: "NGA"}
	testDB.Create(other)
	_, err = kycService.GetAuditTrail(other.ID, record.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestResetVerification(t *testing.T) {
	kycService, testDB, user, tier, _ := setupKYCServiceTest(t)

	record := &model.VerificationRecord{
		UserID:            user.ID,
		TierConfigID:      tier.ID,
		TierRequirementID: tier.Requirements[0].ID,
		Provider:          "sumsub",
		ApplicantID:       "app-1",
		Status:            model.StatusRejected,
		Attempts:          1,
		ErrorMessage:      "The document appears to be forged",
	}
	testDB.Create(record)

	require.NoError(t, kycService.ResetVerification(context.Background(), user.ID, "basic-kyc-level"))

	var updated model.VerificationRecord
	require.NoError(t, testDB.First(&updated, record.ID).Error)
	assert.Equal(t, model.StatusRestarted, updated.Status)
	assert.Empty(t, updated.ErrorMessage)
	assert.Equal(t, 2, updated.Attempts)
}

func TestResetVerification_ApprovedGuard(t *testing.T) {
	kycService, testDB, user, tier, _ := setupKYCServiceTest(t)

	testDB.Create(&model.VerificationRecord{
		UserID:            user.ID,
		TierConfigID:      tier.ID,
		TierRequirementID: tier.Requirements[0].ID,
		Provider:          "sumsub",
		ApplicantID:       "app-1",
		Status:            model.StatusApproved,
		Attempts:          1,
	})

	err := kycService.ResetVerification(context.Background(), user.ID, "basic-kyc-level")
	assert.ErrorIs(t, err, ErrAlreadyApproved)
}

func TestResetVerification_NoRecords(t *testing.T) {
	kycService, _, user, _, _ := setupKYCServiceTest(t)

	err := kycService.ResetVerification(context.Background(), user.ID, "basic-kyc-level")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
