package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/nexapay/nexapay-backend/internal/errors"
	"github.com/nexapay/nexapay-backend/internal/provider/sumsub"
)

// WebhookBodyKey holds the verified raw webhook body in the gin context. The
// digest is computed over these exact bytes, so the handler must decode the
// same bytes rather than re-reading the request.
const WebhookBodyKey = "webhook_raw_body"

// WebhookAuthMiddleware authenticates inbound provider webhooks by HMAC
// digest over the raw body. Requests that fail authentication never reach
// the event processor.
type WebhookAuthMiddleware struct {
	secret []byte
}

func NewWebhookAuthMiddleware(secret string) *WebhookAuthMiddleware {
	return &WebhookAuthMiddleware{secret: []byte(secret)}
}

func (m *WebhookAuthMiddleware) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		alg := c.GetHeader(sumsub.HeaderDigestAlg)
		digest := c.GetHeader(sumsub.HeaderDigest)
		if alg == "" || digest == "" {
			log.Warn("Webhook request without digest headers", map[string]interface{}{
				"ip": c.ClientIP(),
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthWebhookRejected, "missing payload digest")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			log.Error("Failed to read webhook body", err, nil)
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "unreadable request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := sumsub.VerifyDigest(alg, digest, m.secret, body); err != nil {
			fields := map[string]interface{}{
				"ip":  c.ClientIP(),
				"alg": alg,
			}
			if errors.Is(err, sumsub.ErrUnsupportedDigestAlg) {
				log.Warn("Webhook request with unsupported digest algorithm", fields)
			} else {
				log.Warn("Webhook request with mismatched digest", fields)
			}
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthWebhookRejected, "payload digest verification failed")
			c.Abort()
			return
		}

		c.Set(WebhookBodyKey, body)
		c.Next()
	}
}
