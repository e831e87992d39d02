package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

var envVars = []string{
	"SCHOOL_ADMIN_API_URL", "API_BASE_URL", "SCHOOL_ADMIN_FORMAT", "SCHOOL_ADMIN_QUIET",
	"SCHOOL_ADMIN_NO_COLOR", "NO_COLOR", "SCHOOL_ADMIN_REQUEST_TIMEOUT", "SCHOOL_ADMIN_LANGUAGE",
	"SCHOOL_ADMIN_CACHE_TTL", "SCHOOL_ADMIN_LOG_LEVEL", "SCHOOL_ADMIN_SCHOOL_NAME",
	"SCHOOL_ADMIN_GMAIL_CLIENT_ID", "GMAIL_CLIENT_ID", "SCHOOL_ADMIN_DB_PATH",
}

// clearEnv unsets the variables the loader reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		if value, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

// inEmptyDir runs the test from a directory without config files
func inEmptyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	inEmptyDir(t)

	config, err := LoadWithViper(viper.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.APIURL != "http://localhost:3000" {
		t.Errorf("Expected APIURL to be 'http://localhost:3000', got '%s'", config.APIURL)
	}
	if config.Format != "table" {
		t.Errorf("Expected Format to be 'table', got '%s'", config.Format)
	}
	if config.RequestTimeout != 30*time.Second {
		t.Errorf("Expected RequestTimeout to be 30s, got %v", config.RequestTimeout)
	}
	if config.CacheTTL != 5*time.Minute {
		t.Errorf("Expected CacheTTL to be 5m, got %v", config.CacheTTL)
	}
	if config.Language != "fr" {
		t.Errorf("Expected Language to be 'fr', got '%s'", config.Language)
	}
	if config.BypassHeader != "ngrok-skip-browser-warning" || config.BypassValue != "true" {
		t.Errorf("Unexpected bypass header %s=%s", config.BypassHeader, config.BypassValue)
	}
	if config.School.Currency != "FCFA" {
		t.Errorf("Expected currency FCFA, got '%s'", config.School.Currency)
	}
	if !config.ChromeEnabled {
		t.Error("Expected headless Chrome to be enabled by default")
	}
	if config.DBPath == "" {
		t.Error("Expected a default database path")
	}
	if config.SlogLevel() != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", config.SlogLevel())
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	inEmptyDir(t)

	t.Setenv("SCHOOL_ADMIN_API_URL", "https://api.example.com/")
	t.Setenv("SCHOOL_ADMIN_FORMAT", "JSON")
	t.Setenv("SCHOOL_ADMIN_QUIET", "true")
	t.Setenv("SCHOOL_ADMIN_REQUEST_TIMEOUT", "45")
	t.Setenv("SCHOOL_ADMIN_LANGUAGE", "en")
	t.Setenv("SCHOOL_ADMIN_LOG_LEVEL", "debug")
	t.Setenv("SCHOOL_ADMIN_SCHOOL_NAME", "École Les Bambins")
	t.Setenv("GMAIL_CLIENT_ID", "client-123")

	config, err := LoadWithViper(viper.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.APIURL != "https://api.example.com" {
		t.Errorf("Expected trailing slash trimmed, got '%s'", config.APIURL)
	}
	if config.Format != "json" {
		t.Errorf("Expected Format to be 'json', got '%s'", config.Format)
	}
	if !config.Quiet {
		t.Error("Expected Quiet to be true")
	}
	if config.RequestTimeout != 45*time.Second {
		t.Errorf("Expected RequestTimeout to be 45s, got %v", config.RequestTimeout)
	}
	if config.Language != "en" {
		t.Errorf("Expected Language to be 'en', got '%s'", config.Language)
	}
	if config.SlogLevel() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", config.SlogLevel())
	}
	if config.School.Name != "École Les Bambins" {
		t.Errorf("Expected school name from env, got '%s'", config.School.Name)
	}
	if config.Gmail.ClientID != "client-123" {
		t.Errorf("Expected gmail client id from env, got '%s'", config.Gmail.ClientID)
	}
}

func TestLoad_APIBaseURLAlias(t *testing.T) {
	clearEnv(t)
	inEmptyDir(t)

	t.Setenv("API_BASE_URL", "https://backend.example.org/api")

	config, err := LoadWithViper(viper.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.APIURL != "https://backend.example.org/api" {
		t.Errorf("Expected API_BASE_URL to be used, got '%s'", config.APIURL)
	}

	t.Setenv("SCHOOL_ADMIN_API_URL", "https://primary.example.org")
	config, err = LoadWithViper(viper.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.APIURL != "https://primary.example.org" {
		t.Errorf("Expected prefixed variable to win, got '%s'", config.APIURL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := inEmptyDir(t)

	content := `api_url: https://school.example.com
format: json
cache_ttl: 10m
school:
  name: Groupe Scolaire Avenir
  currency: XOF
gmail:
  from: secretariat@example.com
`
	path := filepath.Join(dir, "school-admin.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadWithViper(viper.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.APIURL != "https://school.example.com" {
		t.Errorf("Expected APIURL from file, got '%s'", config.APIURL)
	}
	if config.CacheTTL != 10*time.Minute {
		t.Errorf("Expected CacheTTL 10m, got %v", config.CacheTTL)
	}
	if config.School.Name != "Groupe Scolaire Avenir" || config.School.Currency != "XOF" {
		t.Errorf("Unexpected school %+v", config.School)
	}
	if config.Gmail.From != "secretariat@example.com" {
		t.Errorf("Expected gmail.from from file, got '%s'", config.Gmail.From)
	}

	// environment overrides the file
	t.Setenv("SCHOOL_ADMIN_FORMAT", "table")
	config, err = LoadWithFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.Format != "table" {
		t.Errorf("Expected env to override file, got '%s'", config.Format)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad url", "SCHOOL_ADMIN_API_URL", "ftp://example.com"},
		{"bad format", "SCHOOL_ADMIN_FORMAT", "xml"},
		{"bad timeout", "SCHOOL_ADMIN_REQUEST_TIMEOUT", "soon"},
		{"zero timeout", "SCHOOL_ADMIN_REQUEST_TIMEOUT", "0"},
		{"negative ttl", "SCHOOL_ADMIN_CACHE_TTL", "-1m"},
		{"bad language", "SCHOOL_ADMIN_LANGUAGE", "de"},
		{"bad log level", "SCHOOL_ADMIN_LOG_LEVEL", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			inEmptyDir(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadWithViper(viper.New()); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := inEmptyDir(t)

	if err := LoadDotEnv(); err != nil {
		t.Fatalf("Missing .env should be ignored, got: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SCHOOL_ADMIN_LANGUAGE=en\nSCHOOL_ADMIN_FORMAT=json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCHOOL_ADMIN_FORMAT", "table")
	t.Cleanup(func() { os.Unsetenv("SCHOOL_ADMIN_LANGUAGE") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	config, err := LoadWithViper(viper.New())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.Language != "en" {
		t.Errorf("Expected language from .env, got '%s'", config.Language)
	}
	if config.Format != "table" {
		t.Errorf("Existing environment must win over .env, got '%s'", config.Format)
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"":    0,
		"90s": 90 * time.Second,
		"2m":  2 * time.Minute,
		"15":  15 * time.Second,
	}
	for input, expected := range tests {
		got, err := parseDuration(input)
		if err != nil {
			t.Errorf("parseDuration(%q) error: %v", input, err)
		}
		if got != expected {
			t.Errorf("parseDuration(%q) = %v, want %v", input, got, expected)
		}
	}

	if _, err := parseDuration("later"); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
