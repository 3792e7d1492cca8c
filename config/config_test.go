package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "" {
		t.Errorf("Expected empty log level, got %s", cfg.LogLevel)
	}
	if cfg.OutputDir != "rapports" {
		t.Errorf("Expected default output dir rapports, got %s", cfg.OutputDir)
	}
	if cfg.RegistryConfigured() {
		t.Error("Registry should not be configured by default")
	}
	if cfg.RegistryTimeout != 10*time.Second {
		t.Errorf("Expected registry timeout 10s, got %s", cfg.RegistryTimeout)
	}
	if cfg.RegistryRate != 2 {
		t.Errorf("Expected registry rate 2, got %g", cfg.RegistryRate)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.SessionSweepInterval != 10*time.Minute {
		t.Errorf("Unexpected session timings: ttl=%s sweep=%s", cfg.SessionTTL, cfg.SessionSweepInterval)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "Debug")
	t.Setenv("OUTPUT_DIR", "/srv/rapports")
	t.Setenv("REGISTRY_URL", "https://registry.example.org/api/medicaments")
	t.Setenv("REGISTRY_API_KEY", "secret")
	t.Setenv("REGISTRY_TIMEOUT", "3s")
	t.Setenv("REGISTRY_RATE", "0.5")
	t.Setenv("SESSION_TTL", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if !cfg.RegistryConfigured() || cfg.RegistryAPIKey != "secret" {
		t.Error("Expected registry to be configured with its key")
	}
	if cfg.RegistryTimeout != 3*time.Second || cfg.RegistryRate != 0.5 {
		t.Errorf("Unexpected registry settings: %s %g", cfg.RegistryTimeout, cfg.RegistryRate)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("Expected session ttl 45m, got %s", cfg.SessionTTL)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "80"},
		{"PORT", "abc"},
		{"PORT", "70000"},
		{"ADDRESS", "8.8.8.8"},
		{"ADDRESS", "not-an-ip"},
		{"ENV", "qa"},
		{"LOG_LEVEL", "verbose"},
		{"MAX_REQUEST_BODY", "-1"},
		{"MAX_HEADER_SIZE", "209715200"},
		{"LOG_RETENTION_WEEKS", "60"},
		{"MAX_LOG_FILE_SIZE", "1024"},
		{"REGISTRY_URL", "ftp://registry.example.org"},
		{"REGISTRY_URL", "https://"},
		{"REGISTRY_TIMEOUT", "-5s"},
		{"REGISTRY_RATE", "0"},
		{"SESSION_TTL", "0s"},
		{"SESSION_SWEEP_INTERVAL", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected an error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Error should name %s, got: %v", tt.key, err)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	for _, addr := range []string{"127.0.0.1", "::1", "localhost", "192.168.1.10", "10.0.0.5", "0.0.0.0"} {
		if err := validateAddress(addr); err != nil {
			t.Errorf("validateAddress(%q) = %v, want nil", addr, err)
		}
	}
}

func TestUnparsableNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_RETENTION_WEEKS", "many")
	t.Setenv("REGISTRY_TIMEOUT", "ten seconds")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.LogRetentionWeeks != 4 {
		t.Errorf("Expected retention fallback 4, got %d", cfg.LogRetentionWeeks)
	}
	if cfg.RegistryTimeout != 10*time.Second {
		t.Errorf("Expected timeout fallback 10s, got %s", cfg.RegistryTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("OUTPUT_DIR=/tmp/fiches\nPORT=9001\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv only fills variables that are not set at all
	_ = os.Unsetenv("OUTPUT_DIR")
	// already set variables win over the file
	t.Setenv("PORT", "8500")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "/tmp/fiches" {
		t.Errorf("OUTPUT_DIR = %s, want the .env value", cfg.OutputDir)
	}
	if cfg.Port != "8500" {
		t.Errorf("PORT = %s, want the environment value", cfg.Port)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("a missing .env should be ignored, got %v", err)
	}
}
