// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/seedpull/internal/domain"
)

// AppConfig loads and holds the runtime configuration. Values come from
// config.toml overlaid with SEEDPULL__ environment variables, for example
// SEEDPULL__QBIT_HOST or SEEDPULL__PULL_DEST_ROOT.
type AppConfig struct {
	Config *domain.Config

	viper *viper.Viper
	mu    sync.RWMutex
}

// New reads configuration from configPath. A missing file is not an error;
// defaults and environment variables still apply. An empty configPath falls
// back to config.toml in the default config directory.
func New(configPath, version string) (*AppConfig, error) {
	c := &AppConfig{
		Config: &domain.Config{Version: version},
		viper:  viper.New(),
	}

	c.setDefaults()

	c.viper.SetConfigType("toml")
	c.viper.SetConfigFile(resolveConfigPath(configPath))

	c.bindEnv()

	if err := c.viper.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		log.Debug().Str("path", c.viper.ConfigFileUsed()).Msg("no config file found, using defaults and environment")
	}

	if err := c.unmarshal(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *AppConfig) setDefaults() {
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)

	c.viper.SetDefault("qbit.host", "")
	c.viper.SetDefault("qbit.username", "")
	c.viper.SetDefault("qbit.password", "")
	c.viper.SetDefault("qbit.basicUsername", "")
	c.viper.SetDefault("qbit.basicPassword", "")
	c.viper.SetDefault("qbit.timeoutSeconds", 60)

	c.viper.SetDefault("rclone.binary", "rclone")
	c.viper.SetDefault("rclone.remote", "")
	c.viper.SetDefault("rclone.configPath", "")
	c.viper.SetDefault("rclone.sourceRoot", "")
	c.viper.SetDefault("rclone.transfers", 4)
	c.viper.SetDefault("rclone.checkers", 8)
	c.viper.SetDefault("rclone.retries", 5)
	c.viper.SetDefault("rclone.timeoutMinutes", 0)

	c.viper.SetDefault("pull.categories", []string{"radarr", "sonarr"})
	c.viper.SetDefault("pull.pulledTag", "pulled")
	c.viper.SetDefault("pull.destRoot", "")
	c.viper.SetDefault("pull.maxConcurrent", 1)

	c.viper.SetDefault("journal.enabled", false)
	c.viper.SetDefault("journal.path", "")

	c.viper.SetDefault("serve.intervalMinutes", 15)
	c.viper.SetDefault("serve.metricsEnabled", false)
	c.viper.SetDefault("serve.metricsHost", "127.0.0.1")
	c.viper.SetDefault("serve.metricsPort", 9274)

	c.viper.SetDefault("sonarr.url", "")
	c.viper.SetDefault("sonarr.apiKey", "")
	c.viper.SetDefault("sonarr.minAgeHours", 24)

	c.viper.SetDefault("lidarr.url", "")
	c.viper.SetDefault("lidarr.apiKey", "")
	c.viper.SetDefault("lidarr.minAgeHours", 24)
}

// bindEnv maps SEEDPULL__ environment variables onto config keys. Explicit
// bindings keep the env names snake case while the TOML keys stay camel case.
func (c *AppConfig) bindEnv() {
	for key, env := range map[string]string{
		"logLevel":              "SEEDPULL__LOG_LEVEL",
		"logPath":               "SEEDPULL__LOG_PATH",
		"logMaxSize":            "SEEDPULL__LOG_MAX_SIZE",
		"logMaxBackups":         "SEEDPULL__LOG_MAX_BACKUPS",
		"qbit.host":             "SEEDPULL__QBIT_HOST",
		"qbit.username":         "SEEDPULL__QBIT_USERNAME",
		"qbit.password":         "SEEDPULL__QBIT_PASSWORD",
		"qbit.basicUsername":    "SEEDPULL__QBIT_BASIC_USERNAME",
		"qbit.basicPassword":    "SEEDPULL__QBIT_BASIC_PASSWORD",
		"qbit.timeoutSeconds":   "SEEDPULL__QBIT_TIMEOUT_SECONDS",
		"rclone.binary":         "SEEDPULL__RCLONE_BINARY",
		"rclone.remote":         "SEEDPULL__RCLONE_REMOTE",
		"rclone.configPath":     "SEEDPULL__RCLONE_CONFIG_PATH",
		"rclone.sourceRoot":     "SEEDPULL__RCLONE_SOURCE_ROOT",
		"rclone.transfers":      "SEEDPULL__RCLONE_TRANSFERS",
		"rclone.checkers":       "SEEDPULL__RCLONE_CHECKERS",
		"rclone.retries":        "SEEDPULL__RCLONE_RETRIES",
		"rclone.timeoutMinutes": "SEEDPULL__RCLONE_TIMEOUT_MINUTES",
		"pull.categories":       "SEEDPULL__PULL_CATEGORIES",
		"pull.pulledTag":        "SEEDPULL__PULL_PULLED_TAG",
		"pull.destRoot":         "SEEDPULL__PULL_DEST_ROOT",
		"pull.maxConcurrent":    "SEEDPULL__PULL_MAX_CONCURRENT",
		"journal.enabled":       "SEEDPULL__JOURNAL_ENABLED",
		"journal.path":          "SEEDPULL__JOURNAL_PATH",
		"serve.intervalMinutes": "SEEDPULL__SERVE_INTERVAL_MINUTES",
		"serve.metricsEnabled":  "SEEDPULL__SERVE_METRICS_ENABLED",
		"serve.metricsHost":     "SEEDPULL__SERVE_METRICS_HOST",
		"serve.metricsPort":     "SEEDPULL__SERVE_METRICS_PORT",
		"sonarr.url":            "SEEDPULL__SONARR_URL",
		"sonarr.apiKey":         "SEEDPULL__SONARR_API_KEY",
		"sonarr.minAgeHours":    "SEEDPULL__SONARR_MIN_AGE_HOURS",
		"lidarr.url":            "SEEDPULL__LIDARR_URL",
		"lidarr.apiKey":         "SEEDPULL__LIDARR_API_KEY",
		"lidarr.minAgeHours":    "SEEDPULL__LIDARR_MIN_AGE_HOURS",
	} {
		// error only fires on an empty key
		_ = c.viper.BindEnv(key, env)
	}
}

func (c *AppConfig) unmarshal() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	version := c.Config.Version
	cfg := &domain.Config{}
	if err := c.viper.Unmarshal(cfg); err != nil {
		return errors.Wrap(err, "failed to parse config")
	}
	cfg.Version = version
	c.Config = cfg
	return nil
}

// Get returns the current configuration snapshot.
func (c *AppConfig) Get() *domain.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Config
}

// Watch re-reads the config file whenever it changes and invokes onChange
// with the fresh configuration. Used by serve mode to pick up log level
// changes without a restart.
func (c *AppConfig) Watch(onChange func(*domain.Config)) {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Debug().Str("file", e.Name).Msg("config file changed, reloading")

		if err := c.unmarshal(); err != nil {
			log.Error().Err(err).Msg("failed to reload config, keeping previous values")
			return
		}
		if onChange != nil {
			onChange(c.Get())
		}
	})
	c.viper.WatchConfig()
}

func resolveConfigPath(configPath string) string {
	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			return filepath.Join(configPath, "config.toml")
		}
		return configPath
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "seedpull", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "seedpull", "config.toml")
}
