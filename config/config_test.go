package config

import (
	"testing"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Environment:      "development",
		ServerPort:       8080,
		JWTSecret:        "secret",
		JWTExpiryHours:   72,
		OTPExpiryMinutes: 10,
		OTPMaxAttempts:   5,
		MaxUploadMB:      10,
		DefaultLocale:    "en",
	}
}

func TestValidateConfig(t *testing.T) {
	log := logger.New("config_test")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.ServerPort = 0 }, wantErr: true},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{
			name: "short secret in production",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "short"
			},
			wantErr: true,
		},
		{name: "zero otp expiry", mutate: func(c *Config) { c.OTPExpiryMinutes = 0 }, wantErr: true},
		{name: "zero otp attempts", mutate: func(c *Config) { c.OTPMaxAttempts = 0 }, wantErr: true},
		{name: "zero upload limit", mutate: func(c *Config) { c.MaxUploadMB = 0 }, wantErr: true},
		{name: "unknown locale", mutate: func(c *Config) { c.DefaultLocale = "fr" }, wantErr: true},
		{name: "urdu locale", mutate: func(c *Config) { c.DefaultLocale = "ur" }},
		{name: "smtp without from", mutate: func(c *Config) { c.SMTPHost = "smtp.example.com" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := validateConfig(cfg, log)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, cfg, GetConfig())
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.SMTPEnabled())

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "no-reply@kamwaalay.pk"
	assert.True(t, cfg.SMTPEnabled())
}
