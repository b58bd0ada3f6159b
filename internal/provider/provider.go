package provider

import (
	"context"
	"errors"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/model"
)

var (
	// ErrUpstream wraps every transport or vendor-level failure. Callers
	// treat all upstream failures uniformly; retry policy is theirs.
	ErrUpstream = errors.New("verification provider request failed")

	// ErrUnsupported is returned by operations a vendor does not implement.
	ErrUnsupported = errors.New("operation not supported by provider")

	// ErrNotConfigured indicates a deploy-time routing misconfiguration.
	ErrNotConfigured = errors.New("no verification provider configured")
)

// DocumentType is the internal identity-document taxonomy.
type DocumentType string

const (
	DocPassport        DocumentType = "passport"
	DocDriversLicense  DocumentType = "drivers_license"
	DocResidencePermit DocumentType = "residence_permit"
	DocSelfie          DocumentType = "selfie"
	DocNationalID      DocumentType = "national_id"
	DocBVN             DocumentType = "bvn"
	DocNIN             DocumentType = "nin"
	DocUnknown         DocumentType = "unknown"
)

// Address is a normalized applicant address. Country always comes from the
// vendor's structured address, never from free-form metadata.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// IDDocument is one normalized identity document.
type IDDocument struct {
	Type       DocumentType `json:"type"`
	Number     string       `json:"number"`
	Country    string       `json:"country"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	MiddleName string       `json:"middle_name"`
	DOB        string       `json:"dob"`
	ValidUntil string       `json:"valid_until"`
}

// EDDInfo holds enhanced-due-diligence questionnaire answers. All fields are
// optional; unresolvable answers stay empty.
type EDDInfo struct {
	AccountPurpose         string `json:"account_purpose"`
	Occupation             string `json:"occupation"`
	EmploymentStatus       string `json:"employment_status"`
	SourceOfFunds          string `json:"source_of_funds"`
	ExpectedMonthlyPayment string `json:"expected_monthly_payment"`
}

// Applicant is the canonical, vendor-agnostic applicant record. It is
// ephemeral: built per call from a vendor payload, never persisted as-is.
// Every field except ApplicantID and ExternalUserID is optional.
type Applicant struct {
	ApplicantID    string
	ExternalUserID string

	FirstName  string
	LastName   string
	MiddleName string
	DOB        string
	Email      string
	Phone      string
	Country    string

	Address     Address
	IDDocuments []IDDocument

	Status model.CanonicalStatus

	// RejectType carries the raw vendor reject type (e.g. FINAL, RETRY).
	// The canonical status collapses both to rejected; callers branch on
	// this raw value to pick the resubmission path.
	RejectType    string
	RejectLabels  []string
	FailureReason string
	Corrections   string

	EDD EDDInfo

	CreatedAt  *time.Time
	ReviewedAt *time.Time
}

// DocumentMetadata describes one document stored at the vendor.
type DocumentMetadata struct {
	ID           string
	InspectionID string
	Type         DocumentType
	Country      string
	FileType     string
}

// AccessTokenRequest carries what a vendor needs to open a session.
type AccessTokenRequest struct {
	ExternalUserID   string
	Email            string
	Phone            string
	LevelName        string
	VerificationType string
}

// FixedInfo is the subset of applicant data this service may push back to
// the vendor (tax identifier and corrected personal fields).
type FixedInfo struct {
	TaxIdentifier string
	FirstName     string
	LastName      string
	DOB           string
	Country       string
}

// Adapter is the uniform per-vendor verification operation set.
type Adapter interface {
	Name() string

	IssueAccessToken(ctx context.Context, req AccessTokenRequest) (string, error)
	GetApplicant(ctx context.Context, applicantID string) (*Applicant, error)
	GetApplicantByExternalUserID(ctx context.Context, externalUserID string) (*Applicant, error)
	GetDocumentMetadata(ctx context.Context, applicantID string) ([]DocumentMetadata, error)
	GetDocumentContent(ctx context.Context, inspectionID, documentID string) ([]byte, string, error)
	RequestAMLCheck(ctx context.Context, applicantID string) error
	ResetApplicant(ctx context.Context, applicantID string) error
	UpdateFixedInfo(ctx context.Context, applicantID string, info FixedInfo) error

	// ValidateKYC belongs to identity-proofing vendors; adapters that do
	// not implement it return ErrUnsupported so callers can branch.
	ValidateKYC(ctx context.Context, applicantID string) error
}
