package sumsub

// Vendor event types dispatched by the webhook processor. Unknown types are
// ignored for forward compatibility.
const (
	EventApplicantCreated        = "applicantCreated"
	EventApplicantPending        = "applicantPending"
	EventApplicantReviewed       = "applicantReviewed"
	EventApplicantOnHold         = "applicantOnHold"
	EventApplicantReset          = "applicantReset"
	EventApplicantKytTxnApproved = "applicantKytTxnApproved"
	EventApplicantKytTxnRejected = "applicantKytTxnRejected"
	EventApplicantKytTxnOnHold   = "applicantKytTxnOnHold"
)

// Review statuses reported by the vendor.
const (
	ReviewStatusInit      = "init"
	ReviewStatusPending   = "pending"
	ReviewStatusCompleted = "completed"
	ReviewStatusOnHold    = "onHold"
)

// Review answers and reject types.
const (
	AnswerGreen = "GREEN"
	AnswerRed   = "RED"

	RejectTypeFinal = "FINAL"
	RejectTypeRetry = "RETRY"
)

// Vendor identity-document types.
const (
	docTypePassport        = "PASSPORT"
	docTypeDrivers         = "DRIVERS"
	docTypeResidencePermit = "RESIDENCE_PERMIT"
	docTypeSelfie          = "SELFIE"
	docTypeIDCard          = "ID_CARD"
	docTypeBVN             = "BVN"
	docTypeNIN             = "NIN"
)

// KYT transaction types. Only finance transactions are acted upon.
const TxnTypeFinance = "finance"

// Applicant is the raw vendor applicant payload.
type Applicant struct {
	ID             string          `json:"id"`
	ExternalUserID string          `json:"externalUserId"`
	InspectionID   string          `json:"inspectionId"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	CreatedAt      string          `json:"createdAt"`
	Info           ApplicantInfo   `json:"info"`
	FixedInfo      *ApplicantInfo  `json:"fixedInfo,omitempty"`
	Metadata       []MetadataItem  `json:"metadata,omitempty"`
	Questionnaires []Questionnaire `json:"questionnaires,omitempty"`
	Review         Review          `json:"review"`
}

// ApplicantInfo is the structured applicant data block.
type ApplicantInfo struct {
	FirstName  string             `json:"firstName"`
	LastName   string             `json:"lastName"`
	MiddleName string             `json:"middleName"`
	DOB        string             `json:"dob"`
	Country    string             `json:"country"`
	Addresses  []ApplicantAddress `json:"addresses,omitempty"`
	IDDocs     []IDDoc            `json:"idDocs,omitempty"`
}

// ApplicantAddress is one structured address entry.
type ApplicantAddress struct {
	Street   string `json:"street"`
	Town     string `json:"town"`
	State    string `json:"state"`
	PostCode string `json:"postCode"`
	Country  string `json:"country"`
}

// IDDoc is one vendor identity document entry.
type IDDoc struct {
	IDDocType  string `json:"idDocType"`
	Country    string `json:"country"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	Number     string `json:"number"`
	DOB        string `json:"dob"`
	ValidUntil string `json:"validUntil"`
}

// MetadataItem is one free-form key/value pair attached to an applicant.
type MetadataItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Questionnaire holds named sections of question/answer items.
type Questionnaire struct {
	ID       string                          `json:"id"`
	Sections map[string]QuestionnaireSection `json:"sections,omitempty"`
}

type QuestionnaireSection struct {
	Items map[string]QuestionnaireItem `json:"items,omitempty"`
}

type QuestionnaireItem struct {
	Value string `json:"value"`
}

// Review is the vendor review state block.
type Review struct {
	ReviewStatus string        `json:"reviewStatus"`
	ReviewDate   string        `json:"reviewDate,omitempty"`
	ReviewResult *ReviewResult `json:"reviewResult,omitempty"`
}

// ReviewResult carries the vendor's review outcome.
type ReviewResult struct {
	ReviewAnswer      string   `json:"reviewAnswer"`
	ModerationComment string   `json:"moderationComment,omitempty"`
	ClientComment     string   `json:"clientComment,omitempty"`
	RejectLabels      []string `json:"rejectLabels,omitempty"`
	ReviewRejectType  string   `json:"reviewRejectType,omitempty"`
}

// WebhookEvent is the inbound webhook body. Dispatch is purely on Type.
type WebhookEvent struct {
	Type           string        `json:"type"`
	ApplicantID    string        `json:"applicantId"`
	InspectionID   string        `json:"inspectionId"`
	CorrelationID  string        `json:"correlationId"`
	ExternalUserID string        `json:"externalUserId"`
	LevelName      string        `json:"levelName"`
	ReviewStatus   string        `json:"reviewStatus"`
	ReviewResult   *ReviewResult `json:"reviewResult,omitempty"`
	KytTxnID       string        `json:"kytTxnId,omitempty"`
	KytTxnType     string        `json:"kytTxnType,omitempty"`
	CreatedAt      string        `json:"createdAt"`
}

// accessTokenResponse is the token issuance response body.
type accessTokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// documentMetadataResponse wraps the document metadata listing.
type documentMetadataResponse struct {
	Items []documentMetadataItem `json:"items"`
}

type documentMetadataItem struct {
	ID           string      `json:"id"`
	InspectionID string      `json:"inspectionId"`
	IDDocDef     idDocDef    `json:"idDocDef"`
	FileMetadata fileMeta    `json:"fileMetadata"`
}

type idDocDef struct {
	IDDocType string `json:"idDocType"`
	Country   string `json:"country"`
}

type fileMeta struct {
	FileType string `json:"fileType"`
}

// errorResponse is the vendor error body.
type errorResponse struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}
