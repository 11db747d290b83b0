package config

import (
	"context"
	"fmt"
)

// SecretProvider answers configuration lookups by key. A provider may be
// backed by the process environment, mounted secret files, or any other
// source that can resolve a string.
type SecretProvider interface {
	// GetSecret returns the value for key; empty string when the key is unset
	GetSecret(ctx context.Context, key string) (string, error)

	// IsAvailable reports whether the provider can serve lookups at all
	IsAvailable(ctx context.Context) bool
}

// ChainProvider resolves each key against an ordered list of providers. The
// first provider that is available and returns a non-empty value wins, so
// mounted secrets can shadow environment defaults.
type ChainProvider struct {
	providers []SecretProvider
}

// NewChainProvider builds a chain that consults providers in the given order
func NewChainProvider(providers ...SecretProvider) *ChainProvider {
	return &ChainProvider{
		providers: providers,
	}
}

// GetSecret walks the chain and returns the first non-empty value found
func (c *ChainProvider) GetSecret(ctx context.Context, key string) (string, error) {
	var lastErr error

	for _, provider := range c.providers {
		if !provider.IsAvailable(ctx) {
			continue
		}

		value, err := provider.GetSecret(ctx, key)
		if err == nil && value != "" {
			return value, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("no provider resolved %s, last error: %w", key, lastErr)
	}
	return "", fmt.Errorf("no provider resolved %s", key)
}

// IsAvailable reports whether at least one provider in the chain is available
func (c *ChainProvider) IsAvailable(ctx context.Context) bool {
	for _, provider := range c.providers {
		if provider.IsAvailable(ctx) {
			return true
		}
	}
	return false
}
