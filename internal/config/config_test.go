package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("BOOKING_TZ", "UTC")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 6, cfg.OpenHour)
	assert.Equal(t, 22, cfg.CloseHour)
	assert.Equal(t, 30, cfg.SlotStepMinutes)
	assert.Equal(t, 24*time.Hour, cfg.CancelCutoff)
	assert.Equal(t, []string{DefaultLocation}, cfg.Locations)
}

func TestLoadRejectsNonPositiveSlotStep(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SLOT_STEP_MINUTES", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLOT_STEP_MINUTES")
}

func TestLoadRequiresSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
