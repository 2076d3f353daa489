// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Qbit: QbitConfig{Host: "http://localhost:8080"},
		Rclone: RcloneConfig{
			Remote:     "seedbox",
			SourceRoot: "/downloads",
		},
		Pull: PullConfig{
			Categories: []string{"radarr", "sonarr"},
			PulledTag:  "pulled",
			DestRoot:   "/data",
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing qbit host",
			mutate:  func(c *Config) { c.Qbit.Host = "" },
			wantErr: "qbit.host",
		},
		{
			name:    "missing rclone remote",
			mutate:  func(c *Config) { c.Rclone.Remote = " " },
			wantErr: "rclone.remote",
		},
		{
			name:    "missing source root",
			mutate:  func(c *Config) { c.Rclone.SourceRoot = "" },
			wantErr: "rclone.sourceRoot",
		},
		{
			name:    "missing dest root",
			mutate:  func(c *Config) { c.Pull.DestRoot = "" },
			wantErr: "pull.destRoot",
		},
		{
			name:    "no categories",
			mutate:  func(c *Config) { c.Pull.Categories = nil },
			wantErr: "pull.categories",
		},
		{
			name:    "blank category entry",
			mutate:  func(c *Config) { c.Pull.Categories = []string{"radarr", "  "} },
			wantErr: "pull.categories",
		},
		{
			name:    "missing pulled tag",
			mutate:  func(c *Config) { c.Pull.PulledTag = "" },
			wantErr: "pull.pulledTag",
		},
		{
			name:    "journal enabled without path",
			mutate:  func(c *Config) { c.Journal.Enabled = true },
			wantErr: "journal.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateArr(t *testing.T) {
	require.NoError(t, ValidateArr("sonarr", ArrConfig{URL: "http://localhost:8989", APIKey: "key"}))

	err := ValidateArr("sonarr", ArrConfig{APIKey: "key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sonarr.url")

	err = ValidateArr("lidarr", ArrConfig{URL: "http://localhost:8686"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lidarr.apiKey")
}
