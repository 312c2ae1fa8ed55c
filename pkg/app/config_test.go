package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, ":8765", cfg.address())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "bizflow.yaml")
	data := []byte(`
server:
  port: 9000
  read_timeout: 2s
database:
  path: ""
invoice:
  tax_rate: 0.2
onboarding:
  signature_delay: 250ms
  session_ttl: 10m
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Empty(t, cfg.Database.Path)
	assert.InDelta(t, 0.2, cfg.Invoice.TaxRate, 1e-9)
	assert.Equal(t, 250*time.Millisecond, cfg.Onboarding.SignatureDelay)
	assert.Equal(t, 10*time.Minute, cfg.Onboarding.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Onboarding.FinishedTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadPortFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "4321")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.Server.Port)

	t.Setenv("PORT", "http")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 70000
	cfg.Invoice.TaxRate = 1.5
	cfg.Onboarding.SignatureDelay = 0
	cfg.Onboarding.SessionTTL = -time.Second
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.port", "invoice.tax_rate", "onboarding.signature_delay", "onboarding.session_ttl", "logging.level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "warn", Development: true})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = NewLogger(LoggingConfig{Level: "nope"})
	assert.Error(t, err)
}
