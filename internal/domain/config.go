// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// Config is the full seedpull configuration as loaded from config.toml
// and SEEDPULL__ environment variables.
type Config struct {
	Version string

	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	Qbit    QbitConfig    `toml:"qbit" mapstructure:"qbit"`
	Rclone  RcloneConfig  `toml:"rclone" mapstructure:"rclone"`
	Pull    PullConfig    `toml:"pull" mapstructure:"pull"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	Serve   ServeConfig   `toml:"serve" mapstructure:"serve"`
	Sonarr  ArrConfig     `toml:"sonarr" mapstructure:"sonarr"`
	Lidarr  ArrConfig     `toml:"lidarr" mapstructure:"lidarr"`
}

// QbitConfig holds the qBittorrent WebUI connection settings.
type QbitConfig struct {
	Host           string `toml:"host" mapstructure:"host"`
	Username       string `toml:"username" mapstructure:"username"`
	Password       string `toml:"password" mapstructure:"password"`
	BasicUsername  string `toml:"basicUsername" mapstructure:"basicUsername"`
	BasicPassword  string `toml:"basicPassword" mapstructure:"basicPassword"`
	TimeoutSeconds int    `toml:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// RcloneConfig holds settings for the rclone transfer backend.
type RcloneConfig struct {
	Binary         string `toml:"binary" mapstructure:"binary"`
	Remote         string `toml:"remote" mapstructure:"remote"`
	ConfigPath     string `toml:"configPath" mapstructure:"configPath"`
	SourceRoot     string `toml:"sourceRoot" mapstructure:"sourceRoot"`
	Transfers      int    `toml:"transfers" mapstructure:"transfers"`
	Checkers       int    `toml:"checkers" mapstructure:"checkers"`
	Retries        int    `toml:"retries" mapstructure:"retries"`
	TimeoutMinutes int    `toml:"timeoutMinutes" mapstructure:"timeoutMinutes"`
}

// PullConfig controls which jobs a pass considers and how it runs them.
type PullConfig struct {
	Categories    []string `toml:"categories" mapstructure:"categories"`
	PulledTag     string   `toml:"pulledTag" mapstructure:"pulledTag"`
	DestRoot      string   `toml:"destRoot" mapstructure:"destRoot"`
	MaxConcurrent int      `toml:"maxConcurrent" mapstructure:"maxConcurrent"`
}

// JournalConfig enables the optional local pull ledger.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Path    string `toml:"path" mapstructure:"path"`
}

// ServeConfig controls the long-running daemon mode.
type ServeConfig struct {
	IntervalMinutes int    `toml:"intervalMinutes" mapstructure:"intervalMinutes"`
	MetricsEnabled  bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost     string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort     int    `toml:"metricsPort" mapstructure:"metricsPort"`
}

// ArrConfig holds connection settings for a Sonarr or Lidarr instance used
// by the cleanup commands.
type ArrConfig struct {
	URL         string `toml:"url" mapstructure:"url"`
	APIKey      string `toml:"apiKey" mapstructure:"apiKey"`
	MinAgeHours int    `toml:"minAgeHours" mapstructure:"minAgeHours"`
}

// Validate checks the settings every command needs before a pass can run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Qbit.Host) == "" {
		return errors.New("qbit.host is required")
	}
	if strings.TrimSpace(c.Rclone.Remote) == "" {
		return errors.New("rclone.remote is required")
	}
	if strings.TrimSpace(c.Rclone.SourceRoot) == "" {
		return errors.New("rclone.sourceRoot is required")
	}
	if strings.TrimSpace(c.Pull.DestRoot) == "" {
		return errors.New("pull.destRoot is required")
	}
	if len(c.Pull.Categories) == 0 {
		return errors.New("pull.categories must name at least one category")
	}
	for _, category := range c.Pull.Categories {
		if strings.TrimSpace(category) == "" {
			return errors.New("pull.categories must not contain empty entries")
		}
	}
	if strings.TrimSpace(c.Pull.PulledTag) == "" {
		return errors.New("pull.pulledTag is required")
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal.path is required when the journal is enabled")
	}
	return nil
}

// ValidateArr checks the settings a cleanup run against the named arr
// instance needs.
func ValidateArr(name string, cfg ArrConfig) error {
	if strings.TrimSpace(cfg.URL) == "" {
		return errors.Errorf("%s.url is required", name)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return errors.Errorf("%s.apiKey is required", name)
	}
	return nil
}
