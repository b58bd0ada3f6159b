package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nexapay/nexapay-backend/internal/app/service"
	apperrors "github.com/nexapay/nexapay-backend/internal/errors"
	"github.com/nexapay/nexapay-backend/internal/middleware"
	"github.com/nexapay/nexapay-backend/internal/provider"
)

type KYCController struct {
	kycService service.KYCService
}

func NewKYCController(kycService service.KYCService) *KYCController {
	return &KYCController{kycService: kycService}
}

type StartVerificationRequest struct {
	Level    string `json:"level" binding:"required"`
	Provider string `json:"provider"`
}

type ResetVerificationRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Level  string `json:"level" binding:"required"`
}

// StartVerification opens a provider session for the authenticated user.
// POST /api/v1/kyc/start
func (ctrl *KYCController) StartVerification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req StartVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid start verification request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "level is required")
		return
	}

	result, err := ctrl.kycService.StartVerification(c.Request.Context(), userID, req.Level, req.Provider)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTierNotFound):
			apperrors.NotFound(c, apperrors.KYCTierNotFound, "unknown verification level")
		case errors.Is(err, service.ErrAlreadyApproved):
			apperrors.Conflict(c, apperrors.KYCAlreadyApproved, "verification is already approved")
		case errors.Is(err, provider.ErrNotConfigured):
			log.Error("No provider configured for user country", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.KYCProviderUnconfigured, "verification is not available in your country yet")
		case errors.Is(err, provider.ErrUpstream):
			apperrors.BadGateway(c, apperrors.KYCProviderUnavailable, "verification provider is unavailable")
		default:
			log.Error("Failed to start verification", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "verification session")
		}
		return
	}

	log.Info("Verification session issued", map[string]interface{}{
		"user_id": userID,
		"level":   req.Level,
	})
	c.JSON(http.StatusOK, result)
}

// GetStatus returns the authenticated user's verification lifecycle view.
// GET /api/v1/kyc/status
func (ctrl *KYCController) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	status, err := ctrl.kycService.GetStatus(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "verification status")
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetAuditTrail returns the status history of one of the user's records.
// GET /api/v1/kyc/records/:id/audit
func (ctrl *KYCController) GetAuditTrail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	recordID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid record id")
		return
	}

	entries, err := ctrl.kycService.GetAuditTrail(userID, uint(recordID))
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			apperrors.NotFound(c, apperrors.KYCRecordNotFound, "verification record not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "audit trail")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ArchiveDocuments archives a user's provider documents to durable storage.
// POST /api/v1/admin/kyc/users/:id/archive
func (ctrl *KYCController) ArchiveDocuments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid user id")
		return
	}

	keys, err := ctrl.kycService.ArchiveDocuments(c.Request.Context(), uint(targetID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			apperrors.NotFound(c, apperrors.KYCRecordNotFound, "no applicant on file for this user")
		case errors.Is(err, provider.ErrUpstream):
			apperrors.BadGateway(c, apperrors.KYCProviderUnavailable, "verification provider is unavailable")
		default:
			log.Error("Failed to archive documents", err, map[string]interface{}{
				"target_user_id": targetID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "document archive")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": keys})
}

// ResetVerification restarts a user's attempt at a level.
// POST /api/v1/admin/kyc/reset
func (ctrl *KYCController) ResetVerification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "user_id and level are required")
		return
	}

	err := ctrl.kycService.ResetVerification(c.Request.Context(), req.UserID, req.Level)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTierNotFound):
			apperrors.NotFound(c, apperrors.KYCTierNotFound, "unknown verification level")
		case errors.Is(err, service.ErrRecordNotFound):
			apperrors.NotFound(c, apperrors.KYCRecordNotFound, "no verification records for this user and level")
		case errors.Is(err, service.ErrAlreadyApproved):
			apperrors.Conflict(c, apperrors.KYCAlreadyApproved, "approved verifications cannot be reset")
		case errors.Is(err, provider.ErrUpstream):
			apperrors.BadGateway(c, apperrors.KYCProviderUnavailable, "verification provider is unavailable")
		default:
			log.Error("Failed to reset verification", err, map[string]interface{}{
				"target_user_id": req.UserID,
				"level":          req.Level,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "verification reset")
		}
		return
	}

	log.Info("Verification reset", map[string]interface{}{
		"target_user_id": req.UserID,
		"level":          req.Level,
	})
	c.JSON(http.StatusOK, gin.H{"message": "verification reset"})
}
