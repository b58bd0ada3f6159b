package sumsub

import (
	"strings"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/provider"
)

// Metadata keys that override the structured address. Country deliberately
// has no metadata key: it always comes from the structured address.
const (
	metaKeyStreet   = "Street"
	metaKeyCity     = "City"
	metaKeyState    = "State"
	metaKeyPostcode = "Postcode"
)

// eddSectionName is the questionnaire section holding enhanced-due-diligence
// answers.
const eddSectionName = "edd"

// occupationNames resolves questionnaire occupation codes to display names.
// Unresolvable codes yield an empty value, never an error.
var occupationNames = map[string]string{
	"accounting_finance":     "Accounting / Finance",
	"agriculture":            "Agriculture",
	"construction":           "Construction",
	"education":              "Education",
	"engineering":            "Engineering",
	"healthcare":             "Healthcare",
	"hospitality":            "Hospitality / Tourism",
	"information_technology": "Information Technology",
	"legal_services":         "Legal Services",
	"public_sector":          "Public Sector",
	"retail_trade":           "Retail / Trade",
	"self_employed":          "Self-Employed",
	"student":                "Student",
	"transport_logistics":    "Transport / Logistics",
	"unemployed":             "Unemployed",
}

// rejectLabelText maps vendor reject labels to human-readable reasons.
// Unknown labels are rendered lower-cased with underscores as spaces.
var rejectLabelText = map[string]string{
	"FORGERY":                    "The document appears to be forged",
	"DOCUMENT_PAGE_MISSING":      "A required page of the document is missing",
	"FRONT_SIDE_MISSING":         "The front side of the document is missing",
	"BACK_SIDE_MISSING":          "The back side of the document is missing",
	"UNSATISFACTORY_PHOTOS":      "The uploaded photos are not clear enough",
	"SCREENSHOTS":                "Screenshots are not accepted, please upload original photos",
	"BLACK_AND_WHITE":            "Black and white images are not accepted",
	"DIGITAL_DOCUMENT":           "Digital document copies are not accepted",
	"SELFIE_MISMATCH":            "The selfie does not match the document photo",
	"EXPIRATION_DATE":            "The document has expired",
	"BAD_PROOF_OF_IDENTITY":      "The identity document could not be accepted",
	"BAD_PROOF_OF_ADDRESS":       "The address document could not be accepted",
	"PROBLEMATIC_APPLICANT_DATA": "The provided personal data could not be confirmed",
}

// ToCanonical normalizes a vendor applicant payload into the canonical
// applicant record. It is total: absent optional vendor data yields absent
// canonical fields, never an error.
func ToCanonical(a *Applicant) *provider.Applicant {
	out := &provider.Applicant{
		ApplicantID:    a.ID,
		ExternalUserID: a.ExternalUserID,
		Email:          a.Email,
		Phone:          a.Phone,
		Country:        a.Info.Country,
		Status:         MapReviewStatus(a.Review.ReviewStatus, a.Review.ReviewResult),
		CreatedAt:      parseVendorTime(a.CreatedAt),
		ReviewedAt:     parseVendorTime(a.Review.ReviewDate),
	}

	resolveNames(out, &a.Info)
	out.Address = resolveAddress(&a.Info, a.Metadata)
	out.IDDocuments = classifyDocuments(&a.Info)
	out.EDD = extractEDD(a.Questionnaires)

	if result := a.Review.ReviewResult; result != nil {
		out.RejectType = result.ReviewRejectType
		out.RejectLabels = result.RejectLabels
		out.FailureReason = resolveFailureReason(result)
		if result.ModerationComment != "" && result.ModerationComment != out.FailureReason {
			out.Corrections = result.ModerationComment
		}
	}

	return out
}

// MapReviewStatus maps vendor review state + answer into the canonical enum.
// Both FINAL and RETRY reject types collapse to rejected here; callers that
// need the resubmission path branch on the raw reject type instead.
func MapReviewStatus(reviewStatus string, result *ReviewResult) model.CanonicalStatus {
	switch reviewStatus {
	case ReviewStatusInit:
		return model.StatusNotStarted
	case ReviewStatusPending:
		return model.StatusPending
	case ReviewStatusOnHold:
		return model.StatusInReview
	case ReviewStatusCompleted:
		if result == nil {
			return model.StatusInReview
		}
		switch result.ReviewAnswer {
		case AnswerGreen:
			return model.StatusApproved
		case AnswerRed:
			return model.StatusRejected
		default:
			return model.StatusInReview
		}
	default:
		return model.StatusInReview
	}
}

// resolveNames prefers the first identity document's name fields, falling
// back per-field to the applicant-info-level values.
func resolveNames(out *provider.Applicant, info *ApplicantInfo) {
	out.FirstName = info.FirstName
	out.LastName = info.LastName
	out.MiddleName = info.MiddleName
	out.DOB = info.DOB

	if len(info.IDDocs) == 0 {
		return
	}

	doc := info.IDDocs[0]
	if doc.FirstName != "" {
		out.FirstName = doc.FirstName
	}
	if doc.LastName != "" {
		out.LastName = doc.LastName
	}
	if doc.MiddleName != "" {
		out.MiddleName = doc.MiddleName
	}
	if doc.DOB != "" {
		out.DOB = doc.DOB
	}
}

// resolveAddress merges free-form metadata over the structured address.
// Country always comes from the structured address.
func resolveAddress(info *ApplicantInfo, metadata []MetadataItem) provider.Address {
	var addr provider.Address
	if len(info.Addresses) > 0 {
		structured := info.Addresses[0]
		addr = provider.Address{
			Street:   structured.Street,
			City:     structured.Town,
			State:    structured.State,
			Postcode: structured.PostCode,
			Country:  structured.Country,
		}
	}

	for _, item := range metadata {
		switch item.Key {
		case metaKeyStreet:
			addr.Street = item.Value
		case metaKeyCity:
			addr.City = item.Value
		case metaKeyState:
			addr.State = item.Value
		case metaKeyPostcode:
			addr.Postcode = item.Value
		}
	}

	return addr
}

// classifyDocuments maps every vendor identity document onto the internal
// taxonomy. A generic ID card for a Nigerian applicant is reclassified as
// NIN; all other country/type combinations pass through unchanged.
func classifyDocuments(info *ApplicantInfo) []provider.IDDocument {
	if len(info.IDDocs) == 0 {
		return nil
	}

	nigerian := strings.EqualFold(info.Country, "NGA")

	docs := make([]provider.IDDocument, 0, len(info.IDDocs))
	for _, doc := range info.IDDocs {
		docType := classifyDocType(doc.IDDocType)
		if nigerian && doc.IDDocType == docTypeIDCard {
			docType = provider.DocNIN
		}
		docs = append(docs, provider.IDDocument{
			Type:       docType,
			Number:     doc.Number,
			Country:    doc.Country,
			FirstName:  doc.FirstName,
			LastName:   doc.LastName,
			MiddleName: doc.MiddleName,
			DOB:        doc.DOB,
			ValidUntil: doc.ValidUntil,
		})
	}
	return docs
}

func classifyDocType(vendorType string) provider.DocumentType {
	switch vendorType {
	case docTypePassport:
		return provider.DocPassport
	case docTypeDrivers:
		return provider.DocDriversLicense
	case docTypeResidencePermit:
		return provider.DocResidencePermit
	case docTypeSelfie:
		return provider.DocSelfie
	case docTypeIDCard:
		return provider.DocNationalID
	case docTypeBVN:
		return provider.DocBVN
	case docTypeNIN:
		return provider.DocNIN
	default:
		return provider.DocUnknown
	}
}

// resolveFailureReason prefers the client-facing comment, then the
// moderation comment, then the rendered reject labels.
func resolveFailureReason(result *ReviewResult) string {
	if result.ClientComment != "" {
		return result.ClientComment
	}
	if result.ModerationComment != "" {
		return result.ModerationComment
	}
	return FormatRejectLabels(result.RejectLabels)
}

// FormatRejectLabels renders reject labels through the label dictionary,
// joining with ", ". Unknown labels fall back to a lower-cased,
// underscore-to-space rendering.
func FormatRejectLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(labels))
	for _, label := range labels {
		if text, ok := rejectLabelText[label]; ok {
			rendered = append(rendered, text)
		} else {
			rendered = append(rendered, strings.ReplaceAll(strings.ToLower(label), "_", " "))
		}
	}
	return strings.Join(rendered, ", ")
}

// extractEDD pulls enhanced-due-diligence answers out of the named
// questionnaire section, if present.
func extractEDD(questionnaires []Questionnaire) provider.EDDInfo {
	var edd provider.EDDInfo
	for _, q := range questionnaires {
		section, ok := q.Sections[eddSectionName]
		if !ok {
			continue
		}
		edd.AccountPurpose = sectionValue(section, "accountPurpose")
		edd.EmploymentStatus = sectionValue(section, "employmentStatus")
		edd.SourceOfFunds = sectionValue(section, "sourceOfFunds")
		edd.ExpectedMonthlyPayment = sectionValue(section, "expectedMonthlyPayment")
		edd.Occupation = occupationNames[sectionValue(section, "occupation")]
		return edd
	}
	return edd
}

func sectionValue(section QuestionnaireSection, key string) string {
	if item, ok := section.Items[key]; ok {
		return item.Value
	}
	return ""
}

// parseVendorTime parses the vendor's "2006-01-02 15:04:05" timestamps.
// Unparseable values yield nil.
func parseVendorTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return nil
	}
	return &t
}
