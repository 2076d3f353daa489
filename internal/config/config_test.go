// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "config.toml"), "test")
	require.NoError(t, err)

	cfg := c.Get()
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "rclone", cfg.Rclone.Binary)
	assert.Equal(t, 4, cfg.Rclone.Transfers)
	assert.Equal(t, 8, cfg.Rclone.Checkers)
	assert.Equal(t, 5, cfg.Rclone.Retries)
	assert.Equal(t, []string{"radarr", "sonarr"}, cfg.Pull.Categories)
	assert.Equal(t, "pulled", cfg.Pull.PulledTag)
	assert.Equal(t, 1, cfg.Pull.MaxConcurrent)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 15, cfg.Serve.IntervalMinutes)
	assert.Equal(t, "test", cfg.Version)
}

func TestNew_ReadsConfigFile(t *testing.T) {
	path := writeConfig(t, `
logLevel = "DEBUG"

[qbit]
host = "http://seedbox:8080"
username = "admin"

[rclone]
remote = "seedbox"
sourceRoot = "/downloads"
transfers = 2

[pull]
categories = ["radarr", "sonarr", "lidarr"]
destRoot = "/data/media"
`)

	c, err := New(path, "test")
	require.NoError(t, err)

	cfg := c.Get()
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "http://seedbox:8080", cfg.Qbit.Host)
	assert.Equal(t, "admin", cfg.Qbit.Username)
	assert.Equal(t, "seedbox", cfg.Rclone.Remote)
	assert.Equal(t, 2, cfg.Rclone.Transfers)
	assert.Equal(t, 8, cfg.Rclone.Checkers)
	assert.Equal(t, []string{"radarr", "sonarr", "lidarr"}, cfg.Pull.Categories)
	assert.Equal(t, "/data/media", cfg.Pull.DestRoot)
}

func TestNew_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[qbit]
host = "http://original:8080"

[pull]
pulledTag = "done"
`)

	t.Setenv("SEEDPULL__QBIT_HOST", "http://override:9090")
	t.Setenv("SEEDPULL__PULL_DEST_ROOT", "/data/override")
	t.Setenv("SEEDPULL__RCLONE_TIMEOUT_MINUTES", "90")

	c, err := New(path, "test")
	require.NoError(t, err)

	cfg := c.Get()
	assert.Equal(t, "http://override:9090", cfg.Qbit.Host)
	assert.Equal(t, "/data/override", cfg.Pull.DestRoot)
	assert.Equal(t, 90, cfg.Rclone.TimeoutMinutes)
	assert.Equal(t, "done", cfg.Pull.PulledTag)
}

func TestNew_DirectoryPathAppendsConfigToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`logLevel = "TRACE"`), 0o644))

	c, err := New(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, "TRACE", c.Get().LogLevel)
}

func TestNew_MalformedFileFails(t *testing.T) {
	path := writeConfig(t, `logLevel = [unclosed`)

	_, err := New(path, "test")
	require.Error(t, err)
}
