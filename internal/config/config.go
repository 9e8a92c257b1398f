// Package config loads settings from ~/.tada/config.yaml, TADA_*
// environment variables and defaults, in increasing order of precedence
// below command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Makepad-fr/tada/internal/model"
)

// Config is the complete configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Notify NotifyConfig `mapstructure:"notify" yaml:"notify"`
	UI     UIConfig     `mapstructure:"ui" yaml:"ui"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Share  ShareConfig  `mapstructure:"share" yaml:"share"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// APIConfig points at the todo service.
type APIConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`         // base URL; /todos is appended
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"` // per request
}

// NotifyConfig tunes status messages.
type NotifyConfig struct {
	Duration time.Duration `mapstructure:"duration" yaml:"duration"`
}

// UIConfig tunes terminal output.
type UIConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"` // classic, neon, mono
	Color string `mapstructure:"color" yaml:"color"` // auto, always, never
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // trace, debug, info, warn, error
	File  string `mapstructure:"file" yaml:"file"`   // empty: stderr, or ~/.tada/tada.log in the TUI
}

// ShareConfig tunes the share actions.
type ShareConfig struct {
	Subject string `mapstructure:"subject" yaml:"subject"`
}

// ServerConfig is used by `todo serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Data string `mapstructure:"data" yaml:"data"` // JSON file; empty keeps data in memory
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8080/api",
			Timeout: 10 * time.Second,
		},
		Notify: NotifyConfig{Duration: 2500 * time.Millisecond},
		UI:     UIConfig{Theme: "classic", Color: "auto"},
		Log:    LogConfig{Level: "warn"},
		Share:  ShareConfig{Subject: "My Todo List"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Dir returns ~/.tada.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// DefaultPath returns ~/.tada/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration. An explicit path must exist; the default
// path is optional.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix("TADA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		case explicit:
			return nil, fmt.Errorf("failed to read config: %w", statErr)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, errors.Join(errs...))
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.url", cfg.API.URL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("notify.duration", cfg.Notify.Duration)
	v.SetDefault("ui.theme", cfg.UI.Theme)
	v.SetDefault("ui.color", cfg.UI.Color)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("share.subject", cfg.Share.Subject)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.data", cfg.Server.Data)
}

// Validate validates the configuration.
func Validate(cfg *Config) []error {
	var errs []error

	if u, err := url.Parse(cfg.API.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid api url: %q", cfg.API.URL))
	}
	if cfg.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("invalid api timeout: %s", cfg.API.Timeout))
	}
	if cfg.Notify.Duration <= 0 {
		errs = append(errs, fmt.Errorf("invalid notify duration: %s", cfg.Notify.Duration))
	}

	validThemes := map[string]bool{"classic": true, "neon": true, "mono": true}
	if !validThemes[strings.ToLower(cfg.UI.Theme)] {
		errs = append(errs, fmt.Errorf("invalid theme: %s", cfg.UI.Theme))
	}
	validColor := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColor[strings.ToLower(cfg.UI.Color)] {
		errs = append(errs, fmt.Errorf("invalid color mode: %s", cfg.UI.Color))
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "off": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", cfg.Log.Level))
	}

	return errs
}
