package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_PASSWORD", "pw")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1.0, cfg.Bandit.PriorAlpha)
	assert.Equal(t, 1.0, cfg.Bandit.PriorBeta)
	assert.Equal(t, 1.0, cfg.Bandit.SuccessWeight)
	assert.Equal(t, 10, cfg.Bandit.HoldoutPercent)
	assert.Equal(t, 3, cfg.Bandit.FrequencyCapPerDay)
	assert.Empty(t, cfg.Bandit.CatalogSeed)
}

func TestLoadBanditOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BANDIT_PRIOR_ALPHA", "2")
	t.Setenv("BANDIT_HOLDOUT_PERCENT", "25")
	t.Setenv("BANDIT_SEED", "42")
	t.Setenv("BANDIT_CATALOG_SEED", "card:sms:acme,loan:email:acme")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Bandit.PriorAlpha)
	assert.Equal(t, 25, cfg.Bandit.HoldoutPercent)
	assert.Equal(t, uint64(42), cfg.Bandit.Seed)
	assert.Equal(t, []string{"card:sms:acme", "loan:email:acme"}, cfg.Bandit.CatalogSeed)
}

func TestLoadRejectsBadPrior(t *testing.T) {
	setRequired(t)
	t.Setenv("BANDIT_PRIOR_BETA", "0.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prior")
}

func TestLoadRejectsUnparsableBanditValue(t *testing.T) {
	setRequired(t)
	t.Setenv("BANDIT_HOLDOUT_PERCENT", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse bandit env")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := Load()
	require.EqualError(t, err, "missing jwt secret")
}

func TestValidateHoldoutRange(t *testing.T) {
	b := BanditConfig{PriorAlpha: 1, PriorBeta: 1, SuccessWeight: 1, FailureWeight: 1, HoldoutPercent: 101}
	assert.Error(t, b.Validate())
	b.HoldoutPercent = 100
	assert.NoError(t, b.Validate())
}
