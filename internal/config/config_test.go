package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, int32(2), cfg.DBMinConns)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 2, cfg.NotifyWorkers)
	assert.False(t, cfg.EmailConfigured())
	assert.False(t, cfg.DocsEnabled())
}

func TestLoadFromEnvReadsOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("ENABLE_API_DOCS", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "agenda")
	t.Setenv("SMTP_PASS", "pass")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_MIN_CONNS", "8")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.DocsEnabled())
	assert.True(t, cfg.EmailConfigured())
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, int32(4), cfg.DBMinConns)
}

func TestLoadFromEnvRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := loadFromEnv()
	require.Error(t, err)
}

func TestNormalizeEnv(t *testing.T) {
	cases := map[string]string{
		"local":   "development",
		" PROD ":  "production",
		"stage":   "staging",
		"testing": "test",
		"qa":      "qa",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeEnv(in), in)
	}
}
