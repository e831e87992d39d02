// Package config loads the console configuration from defaults, an
// optional school-admin.yaml, a .env file and the environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the console configuration
type Config struct {
	APIURL         string
	BypassHeader   string
	BypassValue    string
	Format         string
	Quiet          bool
	NoColor        bool
	RequestTimeout time.Duration

	DBPath        string
	CacheTTL      time.Duration
	CacheDisabled bool

	Language  string
	OutputDir string
	LogLevel  string

	PreviewAddr   string
	ChromeEnabled bool
	ChromePath    string

	School School
	Gmail  Gmail
}

// School is printed in the header of generated documents
type School struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Currency string
}

// Gmail holds the OAuth2 credentials used to mail invoices
type Gmail struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	UserEmail    string
	From         string
}

// SlogLevel maps LogLevel to a slog level; unknown values mean warn
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// DefaultDBPath returns the session database location under the user config dir
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "school-admin.db"
	}
	return filepath.Join(dir, "school-admin", "school-admin.db")
}
