package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nexapay/nexapay-backend/internal/provider/sumsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "webhook-secret"

func setupWebhookAuthTest(t *testing.T) (*gin.Engine, *[]byte) {
	gin.SetMode(gin.TestMode)

	var seenBody []byte
	engine := gin.New()
	engine.POST("/webhooks/sumsub",
		NewWebhookAuthMiddleware(webhookSecret).Verify(),
		func(c *gin.Context) {
			raw, exists := c.Get(WebhookBodyKey)
			require.True(t, exists)
			seenBody = raw.([]byte)
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return engine, &seenBody
}

func postWebhook(engine *gin.Engine, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/sumsub", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhookAuth_ValidDigestPasses(t *testing.T) {
	engine, seenBody := setupWebhookAuthTest(t)

	body := []byte(`{"type":"applicantCreated","externalUserId":"7"}`)
	digest, err := sumsub.ComputeDigest("HMAC_SHA256_HEX", []byte(webhookSecret), body)
	require.NoError(t, err)

	recorder := postWebhook(engine, body, map[string]string{
		sumsub.HeaderDigestAlg: "HMAC_SHA256_HEX",
		sumsub.HeaderDigest:    digest,
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, body, *seenBody)
}

func TestWebhookAuth_MissingHeaders(t *testing.T) {
	engine, _ := setupWebhookAuthTest(t)

	recorder := postWebhook(engine, []byte(`{}`), nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestWebhookAuth_TamperedBody(t *testing.T) {
	engine, _ := setupWebhookAuthTest(t)

	digest, err := sumsub.ComputeDigest("HMAC_SHA256_HEX", []byte(webhookSecret), []byte(`{"a":1}`))
	require.NoError(t, err)

	recorder := postWebhook(engine, []byte(`{"a":2}`), map[string]string{
		sumsub.HeaderDigestAlg: "HMAC_SHA256_HEX",
		sumsub.HeaderDigest:    digest,
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestWebhookAuth_UnsupportedAlgorithm(t *testing.T) {
	engine, _ := setupWebhookAuthTest(t)

	recorder := postWebhook(engine, []byte(`{}`), map[string]string{
		sumsub.HeaderDigestAlg: "HMAC_MD5_HEX",
		sumsub.HeaderDigest:    "deadbeef",
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
