package provider

import (
	"fmt"
	"strings"

	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// Registry routes KYC operations to the adapter configured for a country.
// The country map is fixed at composition time; routing has no side effects.
type Registry struct {
	adapters  map[string]Adapter
	countries map[string]string
}

// NewRegistry creates a registry with a country -> provider-name map.
func NewRegistry(countryProviders map[string]string) *Registry {
	countries := make(map[string]string, len(countryProviders))
	for country, name := range countryProviders {
		countries[strings.ToUpper(country)] = strings.ToLower(name)
	}
	return &Registry{
		adapters:  make(map[string]Adapter),
		countries: countries,
	}
}

// Register adds an adapter under its own name.
func (r *Registry) Register(adapter Adapter) {
	name := strings.ToLower(adapter.Name())
	r.adapters[name] = adapter
	logger.Info("Registered verification provider", map[string]interface{}{
		"provider": name,
	})
}

// Route resolves an adapter. An explicit provider name wins over the
// country mapping. Unresolvable routes fail closed with ErrNotConfigured:
// that is a deploy-time misconfiguration, not a retryable condition.
func (r *Registry) Route(countryCode, explicitName string) (Adapter, error) {
	if explicitName != "" {
		adapter, ok := r.adapters[strings.ToLower(explicitName)]
		if !ok {
			return nil, fmt.Errorf("%w: provider %q is not registered", ErrNotConfigured, explicitName)
		}
		return adapter, nil
	}

	name, ok := r.countries[strings.ToUpper(countryCode)]
	if !ok {
		return nil, fmt.Errorf("%w: no provider mapped for country %q", ErrNotConfigured, countryCode)
	}

	adapter, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q mapped for country %q is not registered", ErrNotConfigured, name, countryCode)
	}
	return adapter, nil
}
