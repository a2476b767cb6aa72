package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "audit-artifacts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "audit-api.db", cfg.DatabasePath)
	assert.Equal(t, "audit-artifacts", cfg.StorageBucket)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 24, cfg.SandboxAuditWindowHours)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "audit-artifacts")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("SANDBOX_AUDIT_WINDOW_HOURS", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 6, cfg.SandboxAuditWindowHours)
}

func TestLoadRequiresStorageBucket(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BUCKET")
}

func TestLoadRejectsNonPositiveWindow(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "audit-artifacts")
	t.Setenv("SANDBOX_AUDIT_WINDOW_HOURS", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SANDBOX_AUDIT_WINDOW_HOURS")
}

func TestLoadRequiresSMTPWithEmail(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "audit-artifacts")
	t.Setenv("NOTIFICATION_EMAIL", "ops@example.com")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP")
}

func TestLoadAcceptsFullSMTP(t *testing.T) {
	t.Setenv("STORAGE_BUCKET", "audit-artifacts")
	t.Setenv("NOTIFICATION_EMAIL", "ops@example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "mailer")
	t.Setenv("SMTP_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", cfg.NotificationEmail)
}

func TestGetBoolEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_FLAG", "not-a-bool")

	assert.True(t, getBoolEnv("SOME_FLAG", true))
	assert.False(t, getBoolEnv("SOME_FLAG", false))
}
