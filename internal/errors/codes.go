package errors

// Error code constants returned to API clients.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthWebhookRejected    = "AUTH_WEBHOOK_REJECTED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== KYC (KYC_) ====================
	KYCUserNotFound        = "KYC_USER_NOT_FOUND"
	KYCRecordNotFound      = "KYC_RECORD_NOT_FOUND"
	KYCTierNotFound        = "KYC_TIER_NOT_FOUND"
	KYCProviderUnavailable = "KYC_PROVIDER_UNAVAILABLE"
	KYCProviderUnconfigured = "KYC_PROVIDER_UNCONFIGURED"
	KYCAlreadyApproved     = "KYC_ALREADY_APPROVED"
	KYCPhoneConflict       = "KYC_PHONE_CONFLICT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
