// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	defaultPageLimit = 100
	// maxPageLimit is the largest page Redmine serves.
	maxPageLimit = 100
	defaultTimeout   = 30 * time.Second

	// DefaultConfigName is looked up in the home directory when no config
	// file is given.
	DefaultConfigName = ".redmine"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Redmine RedmineConfig
}

// RedmineConfig holds the connection settings of a Redmine instance.
type RedmineConfig struct {
	URL       string
	APIKey    string
	Login     string
	Password  string
	CheckSSL  bool
	UserAgent string
	PageLimit int
	Timeout   time.Duration
}

// AuthMode is the authentication scheme implied by the credentials.
type AuthMode string

const (
	AuthAPIKey AuthMode = "apikey"
	AuthBasic  AuthMode = "basic"
	AuthNone   AuthMode = "none"
)

// AuthMode returns the scheme to use. An API key takes precedence over a
// login.
func (c RedmineConfig) AuthMode() AuthMode {
	switch {
	case c.APIKey != "":
		return AuthAPIKey
	case c.Login != "":
		return AuthBasic
	default:
		return AuthNone
	}
}

// LoadConfig reads configuration from the environment, an optional .env file
// in the working directory and a YAML config file. Environment variables win
// over the file. When path is empty ~/.redmine.yaml is used if present.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REDMINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("check_ssl", true)
	v.SetDefault("page_limit", defaultPageLimit)
	v.SetDefault("timeout", defaultTimeout)

	v.BindEnv("url", "REDMINE_URL")
	v.BindEnv("api_key", "REDMINE_API_KEY")
	v.BindEnv("login", "REDMINE_LOGIN")
	v.BindEnv("password", "REDMINE_PASSWORD")
	v.BindEnv("check_ssl", "REDMINE_CHECK_SSL")
	v.BindEnv("user_agent", "REDMINE_USER_AGENT")
	v.BindEnv("page_limit", "REDMINE_PAGE_LIMIT")
	v.BindEnv("timeout", "REDMINE_TIMEOUT")

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	config := &Config{
		Redmine: RedmineConfig{
			URL:       strings.TrimRight(v.GetString("url"), "/"),
			APIKey:    v.GetString("api_key"),
			Login:     v.GetString("login"),
			Password:  v.GetString("password"),
			CheckSSL:  v.GetBool("check_ssl"),
			UserAgent: v.GetString("user_agent"),
			PageLimit: v.GetInt("page_limit"),
			Timeout:   v.GetDuration("timeout"),
		},
	}

	if err := validatePageLimit(config.Redmine.PageLimit); err != nil {
		return nil, err
	}
	if config.Redmine.Timeout <= 0 {
		config.Redmine.Timeout = defaultTimeout
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return fmt.Errorf("failed to expand config path %q: %w", path, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %q: %w", expanded, err)
		}
		return nil
	}

	home, err := homedir.Dir()
	if err != nil {
		// No home directory, nothing to read.
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func validatePageLimit(limit int) error {
	if limit <= 0 || limit > maxPageLimit {
		return fmt.Errorf("invalid REDMINE_PAGE_LIMIT %d: must be between 1 and %d", limit, maxPageLimit)
	}
	return nil
}

// ValidateRedmineConfig validates the settings needed to reach Redmine. An
// API key cannot be combined with a login or password.
func ValidateRedmineConfig(config *Config) error {
	rc := config.Redmine
	var missingVars []string

	if rc.URL == "" {
		missingVars = append(missingVars, "REDMINE_URL")
	}
	if rc.APIKey == "" {
		if rc.Login != "" && rc.Password == "" {
			missingVars = append(missingVars, "REDMINE_PASSWORD")
		}
		if rc.Login == "" && rc.Password != "" {
			missingVars = append(missingVars, "REDMINE_LOGIN")
		}
	}

	var problems []string
	if len(missingVars) > 0 {
		problems = append(problems, fmt.Sprintf("missing required environment variables: %v", missingVars))
	}
	if rc.APIKey != "" && (rc.Login != "" || rc.Password != "") {
		problems = append(problems, "conflicting credentials: REDMINE_API_KEY cannot be combined with REDMINE_LOGIN or REDMINE_PASSWORD")
	}
	// Zero leaves the client default in place.
	if rc.PageLimit != 0 {
		if err := validatePageLimit(rc.PageLimit); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}

	return nil
}
