package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadAndValidate(t *testing.T) {
	// Create temp config file
	content := `
worldbank:
  api_base_url: "https://api.worldbank.org/v2"
  timeout: 15s
  per_page: 500
  language: "en-US"
  fatal_delay: 2s

server:
  addr: "127.0.0.1:9090"

telegram:
  bot_token: "test_token"
  chat_id: "12345"
  enabled: true

archive:
  enabled: true
  driver: "sqlite"
  dsn: "./data/test.db"

logging:
  level: "debug"
  format: "json"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test Load
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify values
	if cfg.WorldBank.Timeout != 15*time.Second {
		t.Errorf("Unexpected timeout: %v", cfg.WorldBank.Timeout)
	}
	if cfg.WorldBank.PerPage != 500 {
		t.Errorf("Unexpected per_page: %d", cfg.WorldBank.PerPage)
	}
	if cfg.WorldBank.FatalDelay != 2*time.Second {
		t.Errorf("Unexpected fatal delay: %v", cfg.WorldBank.FatalDelay)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Unexpected server addr: %s", cfg.Server.Addr)
	}
	// Defaults fill what the file leaves out
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Unexpected shutdown timeout: %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Export.Dir != "./out" {
		t.Errorf("Unexpected export dir: %s", cfg.Export.Dir)
	}

	// Test Validate
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WorldBank.APIBaseURL != "https://api.worldbank.org/v2" {
		t.Errorf("Unexpected API URL: %s", cfg.WorldBank.APIBaseURL)
	}
	if cfg.WorldBank.FatalDelay != time.Second {
		t.Errorf("Unexpected fatal delay: %v", cfg.WorldBank.FatalDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("COUNTRY_STATS_WORLDBANK_API_BASE_URL", "http://localhost:9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WorldBank.APIBaseURL != "http://localhost:9999" {
		t.Errorf("env override not applied: %s", cfg.WorldBank.APIBaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func validConfig() *Config {
	return &Config{
		WorldBank: WorldBankConfig{
			APIBaseURL: "https://example.com",
			Timeout:    30 * time.Second,
			PerPage:    100,
			Language:   "en-US",
			FatalDelay: time.Second,
		},
		Server: ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "missing telegram token when enabled",
			mutate: func(c *Config) {
				c.Telegram = TelegramConfig{Enabled: true, ChatID: "1"}
			},
			wantErr: true,
		},
		{
			name: "timeout too short",
			mutate: func(c *Config) {
				c.WorldBank.Timeout = 10 * time.Millisecond
			},
			wantErr: true,
		},
		{
			name: "unknown archive driver",
			mutate: func(c *Config) {
				c.Archive = ArchiveConfig{Enabled: true, Driver: "mysql", DSN: "x"}
			},
			wantErr: true,
		},
		{
			name: "archive disabled ignores driver",
			mutate: func(c *Config) {
				c.Archive = ArchiveConfig{Driver: "mysql"}
			},
			wantErr: false,
		},
		{
			name: "invalid log format",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
