package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"school-admin/internal/i18n"
)

// EnvPrefix prefixes every environment variable, e.g. SCHOOL_ADMIN_API_URL
const EnvPrefix = "SCHOOL_ADMIN"

// LoadWithViper loads configuration using v, which may carry bound flags
func LoadWithViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	setupEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Load loads configuration using a fresh Viper instance
func Load() (*Config, error) {
	return LoadWithViper(viper.New())
}

// LoadWithFile loads configuration from a specific file
func LoadWithFile(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadWithViper(v)
}

// LoadDotEnv loads variables from .env files without overriding the
// environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:3000")
	v.SetDefault("bypass_header", "ngrok-skip-browser-warning")
	v.SetDefault("bypass_value", "true")
	v.SetDefault("format", "table")
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("request_timeout", "30s")

	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("cache_disabled", false)

	v.SetDefault("language", i18n.DefaultLanguage)
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "warn")

	v.SetDefault("preview_addr", "127.0.0.1:0")
	v.SetDefault("chrome_enabled", true)
	v.SetDefault("chrome_path", "")

	v.SetDefault("school.name", "")
	v.SetDefault("school.address", "")
	v.SetDefault("school.phone", "")
	v.SetDefault("school.email", "")
	v.SetDefault("school.currency", "FCFA")

	for _, key := range []string{"client_id", "client_secret", "refresh_token", "access_token", "user_email", "from"} {
		v.SetDefault("gmail."+key, "")
	}
}

func setupEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// variable names the web front end and the Gmail tooling already use
	aliases := map[string][]string{
		"api_url":             {EnvPrefix + "_API_URL", "API_BASE_URL"},
		"no_color":            {EnvPrefix + "_NO_COLOR", "NO_COLOR"},
		"gmail.client_id":     {EnvPrefix + "_GMAIL_CLIENT_ID", "GMAIL_CLIENT_ID"},
		"gmail.client_secret": {EnvPrefix + "_GMAIL_CLIENT_SECRET", "GMAIL_CLIENT_SECRET"},
		"gmail.refresh_token": {EnvPrefix + "_GMAIL_REFRESH_TOKEN", "GMAIL_REFRESH_TOKEN"},
		"gmail.access_token":  {EnvPrefix + "_GMAIL_ACCESS_TOKEN", "GMAIL_ACCESS_TOKEN"},
		"gmail.user_email":    {EnvPrefix + "_GMAIL_USER_EMAIL", "GMAIL_USER_EMAIL"},
	}
	for key, envs := range aliases {
		v.BindEnv(append([]string{key}, envs...)...)
	}
}

func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME")
		v.SetConfigName("school-admin")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, only return error if it's not a "not found" error
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}

func unmarshalConfig(v *viper.Viper, config *Config) error {
	config.APIURL = strings.TrimSuffix(strings.TrimSpace(v.GetString("api_url")), "/")
	config.BypassHeader = v.GetString("bypass_header")
	config.BypassValue = v.GetString("bypass_value")
	config.Format = strings.ToLower(v.GetString("format"))
	config.Quiet = v.GetBool("quiet")
	config.NoColor = v.GetBool("no_color")

	timeout, err := parseDuration(v.GetString("request_timeout"))
	if err != nil {
		return fmt.Errorf("invalid request timeout: %w", err)
	}
	config.RequestTimeout = timeout

	config.DBPath = v.GetString("db_path")
	ttl, err := parseDuration(v.GetString("cache_ttl"))
	if err != nil {
		return fmt.Errorf("invalid cache ttl: %w", err)
	}
	config.CacheTTL = ttl
	config.CacheDisabled = v.GetBool("cache_disabled")

	config.Language = strings.ToLower(v.GetString("language"))
	config.OutputDir = v.GetString("output_dir")
	config.LogLevel = strings.ToLower(v.GetString("log_level"))

	config.PreviewAddr = v.GetString("preview_addr")
	config.ChromeEnabled = v.GetBool("chrome_enabled")
	config.ChromePath = v.GetString("chrome_path")

	config.School = School{
		Name:     v.GetString("school.name"),
		Address:  v.GetString("school.address"),
		Phone:    v.GetString("school.phone"),
		Email:    v.GetString("school.email"),
		Currency: v.GetString("school.currency"),
	}
	config.Gmail = Gmail{
		ClientID:     v.GetString("gmail.client_id"),
		ClientSecret: v.GetString("gmail.client_secret"),
		RefreshToken: v.GetString("gmail.refresh_token"),
		AccessToken:  v.GetString("gmail.access_token"),
		UserEmail:    v.GetString("gmail.user_email"),
		From:         v.GetString("gmail.from"),
	}

	return nil
}

// parseDuration accepts a Go duration or a whole number of seconds
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a duration nor a number of seconds", s)
	}
	return time.Duration(seconds) * time.Second, nil
}

func validateConfig(config *Config) error {
	if config.APIURL == "" {
		return fmt.Errorf("API URL cannot be empty")
	}
	u, err := url.Parse(config.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL format: %s", config.APIURL)
	}

	if config.Format != "table" && config.Format != "json" {
		return fmt.Errorf("invalid format: %s (must be one of: table, json)", config.Format)
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if config.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}

	supported := false
	for _, lang := range i18n.Languages() {
		if config.Language == lang {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported language: %s (must be one of: %s)", config.Language, strings.Join(i18n.Languages(), ", "))
	}

	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if config.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	return nil
}
