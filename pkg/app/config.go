package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"bizflow/pkg/invoice"
	"bizflow/pkg/onboarding"
)

// Config holds all BizFlow configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Invoice    InvoiceConfig    `yaml:"invoice"`
	Onboarding OnboardingConfig `yaml:"onboarding"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig configures storage. An empty path keeps everything in memory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// InvoiceConfig configures invoice totals.
type InvoiceConfig struct {
	TaxRate float64 `yaml:"tax_rate"`
}

// OnboardingConfig configures the wizard.
type OnboardingConfig struct {
	SignatureDelay time.Duration `yaml:"signature_delay"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	FinishedTTL    time.Duration `yaml:"finished_ttl"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8765,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database:   DatabaseConfig{Path: "bizflow.db"},
		Invoice:    InvoiceConfig{TaxRate: invoice.DefaultTaxRate},
		Onboarding: OnboardingConfig{
			SignatureDelay: onboarding.DefaultSignatureDelay,
			SessionTTL:     onboarding.DefaultIdleTTL,
			FinishedTTL:    onboarding.DefaultFinishedTTL,
		},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load overlays the YAML file at path, if any, on the defaults and applies the PORT environment variable.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", raw, err)
		}
		cfg.Server.Port = port
	}
	return cfg, nil
}

// Validate rejects settings the services could not run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Invoice.TaxRate < 0 || c.Invoice.TaxRate > 1 {
		errs = append(errs, fmt.Errorf("invoice.tax_rate %v must be between 0 and 1", c.Invoice.TaxRate))
	}
	if c.Onboarding.SignatureDelay <= 0 {
		errs = append(errs, errors.New("onboarding.signature_delay must be positive"))
	}
	if c.Onboarding.SessionTTL <= 0 {
		errs = append(errs, errors.New("onboarding.session_ttl must be positive"))
	}
	if c.Onboarding.FinishedTTL <= 0 {
		errs = append(errs, errors.New("onboarding.finished_ttl must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// address converts the port into a binding string.
func (c Config) address() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
