package sumsub

import (
	"testing"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapReviewStatus(t *testing.T) {
	tests := []struct {
		name         string
		reviewStatus string
		result       *ReviewResult
		want         model.CanonicalStatus
	}{
		{"init maps to not started", ReviewStatusInit, nil, model.StatusNotStarted},
		{"pending maps to pending", ReviewStatusPending, nil, model.StatusPending},
		{"on hold maps to in review", ReviewStatusOnHold, nil, model.StatusInReview},
		{"completed green maps to approved", ReviewStatusCompleted, &ReviewResult{ReviewAnswer: AnswerGreen}, model.StatusApproved},
		{"completed red maps to rejected", ReviewStatusCompleted, &ReviewResult{ReviewAnswer: AnswerRed}, model.StatusRejected},
		{"completed without result stays in review", ReviewStatusCompleted, nil, model.StatusInReview},
		{"completed unknown answer stays in review", ReviewStatusCompleted, &ReviewResult{ReviewAnswer: "YELLOW"}, model.StatusInReview},
		{"unknown status stays in review", "somethingNew", nil, model.StatusInReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapReviewStatus(tt.reviewStatus, tt.result))
		})
	}
}

func TestToCanonical_NamesPreferFirstDocument(t *testing.T) {
	applicant := &Applicant{
		ID: "app-1",
		Info: ApplicantInfo{
			FirstName:  "Ada",
			LastName:   "Obi",
			MiddleName: "Chinwe",
			DOB:        "1990-01-01",
			IDDocs: []IDDoc{
				{IDDocType: docTypePassport, FirstName: "ADAEZE", LastName: "OBI", DOB: "1990-02-02"},
				{IDDocType: docTypeSelfie, FirstName: "IGNORED"},
			},
		},
	}

	out := ToCanonical(applicant)

	assert.Equal(t, "ADAEZE", out.FirstName)
	assert.Equal(t, "OBI", out.LastName)
	// Document has no middle name, so the info-level value survives.
	assert.Equal(t, "Chinwe", out.MiddleName)
	assert.Equal(t, "1990-02-02", out.DOB)
}

func TestToCanonical_NamesFallBackWithoutDocuments(t *testing.T) {
	applicant := &Applicant{
		Info: ApplicantInfo{FirstName: "Ada", LastName: "Obi", DOB: "1990-01-01"},
	}

	out := ToCanonical(applicant)

	assert.Equal(t, "Ada", out.FirstName)
	assert.Equal(t, "Obi", out.LastName)
	assert.Equal(t, "1990-01-01", out.DOB)
}

func TestToCanonical_AddressMetadataOverride(t *testing.T) {
	applicant := &Applicant{
		Info: ApplicantInfo{
			Addresses: []ApplicantAddress{{
				Street:   "1 Marina Rd",
				Town:     "Lagos",
				State:    "Lagos",
				PostCode: "100001",
				Country:  "NGA",
			}},
		},
		Metadata: []MetadataItem{
			{Key: "Street", Value: "14 Broad Street"},
			{Key: "City", Value: "Ikeja"},
			// A country metadata entry must never override the structured value.
			{Key: "Country", Value: "GHA"},
		},
	}

	out := ToCanonical(applicant)

	assert.Equal(t, "14 Broad Street", out.Address.Street)
	assert.Equal(t, "Ikeja", out.Address.City)
	assert.Equal(t, "Lagos", out.Address.State)
	assert.Equal(t, "100001", out.Address.Postcode)
	assert.Equal(t, "NGA", out.Address.Country)
}

func TestToCanonical_NigerianIDCardBecomesNIN(t *testing.T) {
	tests := []struct {
		name    string
		country string
		docType string
		want    provider.DocumentType
	}{
		{"nigerian id card", "NGA", docTypeIDCard, provider.DocNIN},
		{"nigerian id card lowercase country", "nga", docTypeIDCard, provider.DocNIN},
		{"ghanaian id card stays national id", "GHA", docTypeIDCard, provider.DocNationalID},
		{"nigerian passport stays passport", "NGA", docTypePassport, provider.DocPassport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicant := &Applicant{
				Info: ApplicantInfo{
					Country: tt.country,
					IDDocs:  []IDDoc{{IDDocType: tt.docType, Number: "12345"}},
				},
			}
			out := ToCanonical(applicant)
			require.Len(t, out.IDDocuments, 1)
			assert.Equal(t, tt.want, out.IDDocuments[0].Type)
		})
	}
}

func TestFormatRejectLabels(t *testing.T) {
	assert.Equal(t, "", FormatRejectLabels(nil))

	assert.Equal(t,
		"The document appears to be forged, The document has expired",
		FormatRejectLabels([]string{"FORGERY", "EXPIRATION_DATE"}))

	// Unknown labels render lower-cased with underscores as spaces.
	assert.Equal(t,
		"The uploaded photos are not clear enough, some new label",
		FormatRejectLabels([]string{"UNSATISFACTORY_PHOTOS", "SOME_NEW_LABEL"}))
}

func TestToCanonical_FailureReasonPreference(t *testing.T) {
	tests := []struct {
		name   string
		result ReviewResult
		want   string
	}{
		{
			"client comment wins",
			ReviewResult{ReviewAnswer: AnswerRed, ClientComment: "client", ModerationComment: "moderation", RejectLabels: []string{"FORGERY"}},
			"client",
		},
		{
			"moderation comment next",
			ReviewResult{ReviewAnswer: AnswerRed, ModerationComment: "moderation", RejectLabels: []string{"FORGERY"}},
			"moderation",
		},
		{
			"labels last",
			ReviewResult{ReviewAnswer: AnswerRed, RejectLabels: []string{"FORGERY"}},
			"The document appears to be forged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.result
			out := ToCanonical(&Applicant{Review: Review{ReviewStatus: ReviewStatusCompleted, ReviewResult: &result}})
			assert.Equal(t, tt.want, out.FailureReason)
		})
	}
}

func TestToCanonical_RejectDetail(t *testing.T) {
	applicant := &Applicant{
		Review: Review{
			ReviewStatus: ReviewStatusCompleted,
			ReviewDate:   "2026-03-10 14:25:00",
			ReviewResult: &ReviewResult{
				ReviewAnswer:      AnswerRed,
				ReviewRejectType:  RejectTypeRetry,
				RejectLabels:      []string{"UNSATISFACTORY_PHOTOS"},
				ClientComment:     "Photos were too blurry",
				ModerationComment: "Retake the photo in good light",
			},
		},
	}

	out := ToCanonical(applicant)

	assert.Equal(t, model.StatusRejected, out.Status)
	assert.Equal(t, RejectTypeRetry, out.RejectType)
	assert.Equal(t, []string{"UNSATISFACTORY_PHOTOS"}, out.RejectLabels)
	assert.Equal(t, "Photos were too blurry", out.FailureReason)
	assert.Equal(t, "Retake the photo in good light", out.Corrections)
	require.NotNil(t, out.ReviewedAt)
	assert.Equal(t, 2026, out.ReviewedAt.Year())
}

func TestExtractEDD(t *testing.T) {
	questionnaires := []Questionnaire{
		{
			ID: "onboarding",
			Sections: map[string]QuestionnaireSection{
				"edd": {
					Items: map[string]QuestionnaireItem{
						"accountPurpose":         {Value: "remittances"},
						"employmentStatus":       {Value: "employed"},
						"sourceOfFunds":          {Value: "salary"},
						"expectedMonthlyPayment": {Value: "1000-5000"},
						"occupation":             {Value: "information_technology"},
					},
				},
			},
		},
	}

	out := ToCanonical(&Applicant{Questionnaires: questionnaires})

	assert.Equal(t, "remittances", out.EDD.AccountPurpose)
	assert.Equal(t, "employed", out.EDD.EmploymentStatus)
	assert.Equal(t, "salary", out.EDD.SourceOfFunds)
	assert.Equal(t, "1000-5000", out.EDD.ExpectedMonthlyPayment)
	assert.Equal(t, "Information Technology", out.EDD.Occupation)
}

func TestExtractEDD_AbsentSectionAndUnknownOccupation(t *testing.T) {
	out := ToCanonical(&Applicant{
		Questionnaires: []Questionnaire{
			{Sections: map[string]QuestionnaireSection{
				"other": {Items: map[string]QuestionnaireItem{"foo": {Value: "bar"}}},
			}},
		},
	})
	assert.Equal(t, provider.EDDInfo{}, out.EDD)

	out = ToCanonical(&Applicant{
		Questionnaires: []Questionnaire{
			{Sections: map[string]QuestionnaireSection{
				"edd": {Items: map[string]QuestionnaireItem{"occupation": {Value: "astronaut"}}},
			}},
		},
	})
	assert.Equal(t, "", out.EDD.Occupation)
}
