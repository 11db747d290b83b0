package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapProvider serves secrets from a map for tests
type mapProvider struct {
	values map[string]string
}

func (m *mapProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *mapProvider) IsAvailable(ctx context.Context) bool { return true }

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader(&mapProvider{values: map[string]string{}})

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "ledgerchat", cfg.Database.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionExpiry)
	assert.Equal(t, 100, cfg.Auth.RateLimit)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Query.Timeout)
}

func TestLoadOverrides(t *testing.T) {
	loader := NewLoader(&mapProvider{values: map[string]string{
		"DB_HOST":        "db.internal",
		"OPENAI_API_KEY": "sk-test",
		"OPENAI_MODEL":   "gpt-4o",
		"JWT_EXPIRY":     "1h",
		"RATE_LIMIT":     "10",
		"PORT":           "9000",
	}})

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 10, cfg.Auth.RateLimit)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	loader := NewLoader(&mapProvider{values: map[string]string{
		"JWT_EXPIRY": "not-a-duration",
		"RATE_LIMIT": "lots",
	}})

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 100, cfg.Auth.RateLimit)
}

// unavailableProvider would answer everything, but reports itself down
type unavailableProvider struct{}

func (unavailableProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return "should-never-be-returned", nil
}

func (unavailableProvider) IsAvailable(ctx context.Context) bool { return false }

func TestChainProviderSkipsUnavailable(t *testing.T) {
	chain := NewChainProvider(
		unavailableProvider{},
		&mapProvider{values: map[string]string{"A": "from-fallback"}},
	)

	value, err := chain.GetSecret(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "from-fallback", value)
}

func TestChainProviderFallsBack(t *testing.T) {
	chain := NewChainProvider(
		&mapProvider{values: map[string]string{"A": "first"}},
		&mapProvider{values: map[string]string{"A": "second", "B": "fallback"}},
	)

	a, err := chain.GetSecret(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "first", a)

	b, err := chain.GetSecret(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, "fallback", b)
}

func TestDatabaseDSN(t *testing.T) {
	dbConfig := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		Database: "ledgerchat",
		Username: "app",
		Password: "pw",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=app password=pw dbname=ledgerchat sslmode=disable",
		dbConfig.DSN())
}
