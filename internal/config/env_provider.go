package config

import (
	"context"
	"os"
)

// EnvProvider reads configuration from the process environment. It sits at
// the end of the default chain as the always-available fallback.
type EnvProvider struct{}

// NewEnvProvider creates an environment-backed provider
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// GetSecret looks the key up as an environment variable
func (e *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return os.Getenv(key), nil
}

// IsAvailable is always true; the environment is always there
func (e *EnvProvider) IsAvailable(ctx context.Context) bool {
	return true
}
