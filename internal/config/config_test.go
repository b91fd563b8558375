package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.InactivityTimeout)
	assert.Equal(t, "0.19", cfg.Tax().String())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INACTIVITY_TIMEOUT", "90s")
	t.Setenv("TAX_RATE", "0")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.InactivityTimeout)
	assert.True(t, cfg.Tax().IsZero())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoad_RejectsMalformedTaxRate(t *testing.T) {
	for _, raw := range []string{"0,19", "diecinueve", "-0.1"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("TAX_RATE", raw)
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestTax_Malformed(t *testing.T) {
	cfg := &Config{TaxRate: "diecinueve"}
	assert.True(t, cfg.Tax().IsZero())

	cfg.TaxRate = "-0.1"
	assert.True(t, cfg.Tax().IsZero())
}
