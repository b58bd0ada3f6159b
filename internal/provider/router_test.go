package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name string
}

func (a *stubAdapter) Name() string { return a.name }
func (a *stubAdapter) IssueAccessToken(ctx context.Context, req AccessTokenRequest) (string, error) {
	return "", nil
}
func (a *stubAdapter) GetApplicant(ctx context.Context, applicantID string) (*Applicant, error) {
	return nil, nil
}
func (a *stubAdapter) GetApplicantByExternalUserID(ctx context.Context, externalUserID string) (*Applicant, error) {
	return nil, nil
}
func (a *stubAdapter) GetDocumentMetadata(ctx context.Context, applicantID string) ([]DocumentMetadata, error) {
	return nil, nil
}
func (a *stubAdapter) GetDocumentContent(ctx context.Context, inspectionID, documentID string) ([]byte, string, error) {
	return nil, "", nil
}
func (a *stubAdapter) RequestAMLCheck(ctx context.Context, applicantID string) error { return nil }
func (a *stubAdapter) ResetApplicant(ctx context.Context, applicantID string) error  { return nil }
func (a *stubAdapter) UpdateFixedInfo(ctx context.Context, applicantID string, info FixedInfo) error {
	return nil
}
func (a *stubAdapter) ValidateKYC(ctx context.Context, applicantID string) error {
	return ErrUnsupported
}

func TestRegistry_RouteByCountry(t *testing.T) {
	registry := NewRegistry(map[string]string{"NGA": "sumsub", "GHA": "sumsub"})
	sumsub := &stubAdapter{name: "sumsub"}
	registry.Register(sumsub)

	adapter, err := registry.Route("NGA", "")
	require.NoError(t, err)
	assert.Same(t, Adapter(sumsub), adapter)

	// Country codes are case insensitive.
	adapter, err = registry.Route("gha", "")
	require.NoError(t, err)
	assert.Same(t, Adapter(sumsub), adapter)
}

func TestRegistry_ExplicitProviderWins(t *testing.T) {
	registry := NewRegistry(map[string]string{"NGA": "sumsub"})
	sumsub := &stubAdapter{name: "sumsub"}
	other := &stubAdapter{name: "other"}
	registry.Register(sumsub)
	registry.Register(other)

	adapter, err := registry.Route("NGA", "other")
	require.NoError(t, err)
	assert.Same(t, Adapter(other), adapter)
}

func TestRegistry_FailsClosed(t *testing.T) {
	registry := NewRegistry(map[string]string{"NGA": "sumsub", "KEN": "ghost"})
	registry.Register(&stubAdapter{name: "sumsub"})

	t.Run("unmapped country", func(t *testing.T) {
		_, err := registry.Route("FRA", "")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("mapped but unregistered provider", func(t *testing.T) {
		_, err := registry.Route("KEN", "")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("unknown explicit provider", func(t *testing.T) {
		_, err := registry.Route("NGA", "ghost")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}
