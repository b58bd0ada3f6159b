package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexapay/nexapay-backend/internal/app/service"
	apperrors "github.com/nexapay/nexapay-backend/internal/errors"
	"github.com/nexapay/nexapay-backend/internal/middleware"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/internal/provider/sumsub"
)

type WebhookController struct {
	webhookService service.WebhookService
}

func NewWebhookController(webhookService service.WebhookService) *WebhookController {
	return &WebhookController{webhookService: webhookService}
}

// HandleSumsubWebhook processes a provider verification event.
// POST /api/v1/webhooks/sumsub
//
// Responses drive the vendor's retry behavior: a consumed event (including
// deliberate no-ops) returns 200; an upstream or persistence failure returns
// 5xx so the vendor redelivers.
func (ctrl *WebhookController) HandleSumsubWebhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// The digest middleware already read and verified these bytes.
	rawBody, exists := c.Get(middleware.WebhookBodyKey)
	if !exists {
		log.Error("Webhook handler reached without verified body", nil, nil)
		apperrors.InternalError(c, apperrors.InternalServerError, "")
		return
	}

	var event sumsub.WebhookEvent
	if err := json.Unmarshal(rawBody.([]byte), &event); err != nil {
		log.Warn("Unparseable webhook payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "unparseable webhook payload")
		return
	}

	if err := ctrl.webhookService.ProcessEvent(c.Request.Context(), &event); err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneConflict):
			log.Warn("Webhook processing hit phone conflict", map[string]interface{}{
				"applicant_id": event.ApplicantID,
			})
			apperrors.Conflict(c, apperrors.KYCPhoneConflict, "phone number is already registered to another account")
		case errors.Is(err, provider.ErrUpstream):
			log.Error("Webhook processing failed upstream", err, map[string]interface{}{
				"applicant_id": event.ApplicantID,
				"type":         event.Type,
			})
			apperrors.BadGateway(c, apperrors.KYCProviderUnavailable, "verification provider is unavailable")
		default:
			log.Error("Webhook processing failed", err, map[string]interface{}{
				"applicant_id": event.ApplicantID,
				"type":         event.Type,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "webhook event")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
