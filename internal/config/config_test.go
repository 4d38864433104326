package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "workflow",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "workflow",
		"JWT_SECRET":             "test-secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"IDP_CLIENT_ID":          "client-id",
		"IDP_TENANT_ID":          "tenant-id",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadAppliesDefaultsForOptionalVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IDP_BASE_URL", "")
	t.Setenv("STORAGE_DIR", "")
	t.Setenv("EMAIL_SENDER_ADDRESS", "")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg := Load()
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.IDPBaseURL)
	assert.Equal(t, "data/uploads", cfg.StorageDir)
	assert.Equal(t, "noreply@projectworkflow.com", cfg.EmailSender)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
}

func TestLoadHonorsOptionalOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("IDP_BASE_URL", "http://idp.test/v1")
	t.Setenv("STORAGE_DIR", "/srv/uploads")
	t.Setenv("PUBLIC_BASE_URL", "https://pm.example.com")

	cfg := Load()
	assert.Equal(t, "http://idp.test/v1", cfg.IDPBaseURL)
	assert.Equal(t, "/srv/uploads", cfg.StorageDir)
	assert.Equal(t, "https://pm.example.com", cfg.PublicBaseURL)
}

func TestCacheConfigDefaults(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("CACHE_METHODS", "")
	t.Setenv("CACHE_TTL", "")

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Methods["GET"])
	assert.Equal(t, 30*time.Second, cfg.TTL)
}

func TestRateLimitConfigFloorsNonsenseValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-3")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 10*time.Second, cfg.TTL, "TTL floored to five refill intervals")
}
