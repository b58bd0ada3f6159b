package sumsub

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// Config holds credentials for the Sumsub API client.
type Config struct {
	AppToken  string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.AppToken == "" {
		return fmt.Errorf("app token is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	return nil
}

// Client is the Sumsub implementation of the provider adapter. Every
// request is signed with an HMAC over (timestamp + method + path + body),
// recomputed at send time; signatures are never cached across calls.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a Sumsub client with the given configuration.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name identifies this adapter in the provider registry.
func (c *Client) Name() string {
	return "sumsub"
}

// IssueAccessToken issues a verification session token for a user.
func (c *Client) IssueAccessToken(ctx context.Context, req provider.AccessTokenRequest) (string, error) {
	path := fmt.Sprintf("/resources/accessTokens?userId=%s&levelName=%s&ttlInSecs=600",
		url.QueryEscape(req.ExternalUserID), url.QueryEscape(req.LevelName))

	body, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return "", err
	}

	var tokenResp accessTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode access token response: %v", provider.ErrUpstream, err)
	}
	return tokenResp.Token, nil
}

// GetApplicant fetches and normalizes the full applicant detail by id.
func (c *Client) GetApplicant(ctx context.Context, applicantID string) (*provider.Applicant, error) {
	path := fmt.Sprintf("/resources/applicants/%s/one", url.PathEscape(applicantID))
	return c.fetchApplicant(ctx, path)
}

// GetApplicantByExternalUserID fetches applicant detail by our user id.
func (c *Client) GetApplicantByExternalUserID(ctx context.Context, externalUserID string) (*provider.Applicant, error) {
	path := fmt.Sprintf("/resources/applicants/-;externalUserId=%s/one", url.PathEscape(externalUserID))
	return c.fetchApplicant(ctx, path)
}

func (c *Client) fetchApplicant(ctx context.Context, path string) (*provider.Applicant, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var applicant Applicant
	if err := json.Unmarshal(body, &applicant); err != nil {
		return nil, fmt.Errorf("%w: failed to decode applicant response: %v", provider.ErrUpstream, err)
	}
	return ToCanonical(&applicant), nil
}

// GetDocumentMetadata lists the documents stored for an applicant.
func (c *Client) GetDocumentMetadata(ctx context.Context, applicantID string) ([]provider.DocumentMetadata, error) {
	path := fmt.Sprintf("/resources/applicants/%s/metadata/resources", url.PathEscape(applicantID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp documentMetadataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document metadata response: %v", provider.ErrUpstream, err)
	}

	docs := make([]provider.DocumentMetadata, 0, len(resp.Items))
	for _, item := range resp.Items {
		docs = append(docs, provider.DocumentMetadata{
			ID:           item.ID,
			InspectionID: item.InspectionID,
			Type:         classifyDocType(item.IDDocDef.IDDocType),
			Country:      item.IDDocDef.Country,
			FileType:     item.FileMetadata.FileType,
		})
	}
	return docs, nil
}

// GetDocumentContent fetches raw document content by inspection and
// document id. Returns the bytes and the response content type.
func (c *Client) GetDocumentContent(ctx context.Context, inspectionID, documentID string) ([]byte, string, error) {
	path := fmt.Sprintf("/resources/inspections/%s/resources/%s",
		url.PathEscape(inspectionID), url.PathEscape(documentID))

	body, contentType, err := c.doRequestRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

// RequestAMLCheck triggers an AML recheck for an applicant.
func (c *Client) RequestAMLCheck(ctx context.Context, applicantID string) error {
	path := fmt.Sprintf("/resources/applicants/%s/recheck", url.PathEscape(applicantID))
	_, err := c.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// ResetApplicant resets an applicant's in-progress verification session.
func (c *Client) ResetApplicant(ctx context.Context, applicantID string) error {
	path := fmt.Sprintf("/resources/applicants/%s/reset", url.PathEscape(applicantID))
	_, err := c.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// UpdateFixedInfo patches tax-identifier and corrected personal fields.
func (c *Client) UpdateFixedInfo(ctx context.Context, applicantID string, info provider.FixedInfo) error {
	payload := map[string]interface{}{
		"fixedInfo": map[string]string{
			"tin":       info.TaxIdentifier,
			"firstName": info.FirstName,
			"lastName":  info.LastName,
			"dob":       info.DOB,
			"country":   info.Country,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal fixed info: %w", err)
	}

	path := fmt.Sprintf("/resources/applicants/%s/fixedInfo", url.PathEscape(applicantID))
	_, err = c.doRequest(ctx, http.MethodPatch, path, body)
	return err
}

// ValidateKYC is an identity-proofing operation Sumsub does not expose.
func (c *Client) ValidateKYC(ctx context.Context, applicantID string) error {
	return provider.ErrUnsupported
}

// sign computes the per-request HMAC-SHA256 over ts + method + path + body.
func (c *Client) sign(ts, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.config.SecretKey))
	mac.Write([]byte(ts + method + path))
	if len(body) > 0 {
		mac.Write(body)
	}
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	respBody, _, err := c.doRequestRaw(ctx, method, path, body)
	return respBody, err
}

// doRequestRaw performs one signed HTTP request. Transport and vendor
// errors are wrapped into provider.ErrUpstream; no silent retries.
func (c *Client) doRequestRaw(ctx context.Context, method, path string, body []byte) ([]byte, string, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	// Signature uses the request time at send, never a cached value.
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-App-Token", c.config.AppToken)
	req.Header.Set("X-App-Access-Ts", ts)
	req.Header.Set("X-App-Access-Sig", c.sign(ts, method, path, body))
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("Sumsub API request", map[string]interface{}{
		"method": method,
		"path":   path,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", provider.ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response body: %v", provider.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Description != "" {
			return nil, "", fmt.Errorf("%w: status %d, code %d: %s",
				provider.ErrUpstream, resp.StatusCode, errResp.Code, errResp.Description)
		}
		return nil, "", fmt.Errorf("%w: unexpected status %d: %s",
			provider.ErrUpstream, resp.StatusCode, string(respBody))
	}

	return respBody, resp.Header.Get("Content-Type"), nil
}
