// Package config loads the server configuration from ELECTIONVIEW_* environment
// variables. Command-line flags override individual fields afterwards.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"

	"github.com/abrezinsky/electionview/internal/errors"
)

// Config holds the startup options of the server
type Config struct {
	Port          int    `env:"ELECTIONVIEW_PORT"          envDefault:"8081"`
	DBPath        string `env:"ELECTIONVIEW_DB"            envDefault:"electionview.db"`
	StatsAPIURL   string `env:"ELECTIONVIEW_STATS_API_URL" envDefault:"http://localhost:8080/api"`
	AdminPassword string `env:"ELECTIONVIEW_ADMIN_PASSWORD"`
	LogLevel      string `env:"ELECTIONVIEW_LOG_LEVEL"     envDefault:"info"`
	Locale        string `env:"ELECTIONVIEW_LOCALE"        envDefault:"en"`
	NoBanner      bool   `env:"ELECTIONVIEW_NO_BANNER"     envDefault:"false"`
	NoKeyboard    bool   `env:"ELECTIONVIEW_NO_KEYBOARD"   envDefault:"false"`
}

// Load parses the environment into a Config
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports the first unusable option
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.Validationf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.Validation("database path is required")
	}
	u, err := url.Parse(c.StatsAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Validationf("stats API URL must be an absolute http or https URL, got %q", c.StatsAPIURL)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return errors.Validationf("unknown locale %q", c.Locale)
	}
	return nil
}

// Language returns the parsed locale, falling back to English
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Addr returns the listen address for Port
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
