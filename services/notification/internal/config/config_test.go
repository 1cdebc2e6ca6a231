package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test's duration.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.HTTPPort)
	assert.Equal(t, "notification_db", cfg.PostgresDB)
	assert.Empty(t, cfg.DefaultSenderID)
}

func TestLoad_EventConsumptionRequiresServiceAccount(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":                   "development",
		"DEFAULT_SENDER_ID":             "99999999-8888-4777-a666-555555555555",
		"NOTIFICATION_SERVICE_EMAIL":    "notification-service@example.test",
		"NOTIFICATION_SERVICE_PASSWORD": "service-password",
	})

	// Without the application id the service account cannot log in.
	cfg, err := Load()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFICATION_SERVICE_APP_ID")

	t.Setenv("NOTIFICATION_SERVICE_APP_ID", "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", cfg.ServiceAppID)
}

func TestLoad_Production_RejectsDefaultEncryptionKey(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENCRYPTION_KEY")
}
