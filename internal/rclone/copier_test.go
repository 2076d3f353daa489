// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package rclone

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/seedpull/internal/reconcile"
)

func TestSourceArg(t *testing.T) {
	t.Parallel()

	c := NewCopier(Config{Remote: "seedbox", SourceRoot: "/downloads"})

	tests := []struct {
		name        string
		contentPath string
		want        string
	}{
		{
			name:        "path under source root keeps relative part",
			contentPath: "/downloads/radarr/Movie.2024",
			want:        "seedbox:/downloads/radarr/Movie.2024",
		},
		{
			name:        "path equal to source root",
			contentPath: "/downloads/",
			want:        "seedbox:/downloads",
		},
		{
			name:        "path outside source root falls back to basename",
			contentPath: "/mnt/other/Movie.2024",
			want:        "seedbox:/downloads/Movie.2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.sourceArg(tt.contentPath))
		})
	}
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	c := NewCopier(Config{Remote: "seedbox", SourceRoot: "/downloads", ConfigPath: "/etc/rclone.conf"})
	args := c.buildArgs("seedbox:/downloads/x", "/data/radarr/x")

	assert.Equal(t, "copy", args[0])
	assert.Contains(t, args, "--ignore-existing")
	assert.Contains(t, args, "--transfers")
	assert.Contains(t, args, "--config")
	assert.Contains(t, args, "/etc/rclone.conf")
}

func TestCopy_CreatesDestinationAndSucceeds(t *testing.T) {
	t.Parallel()
	requireUnix(t)

	dest := t.TempDir()
	c := NewCopier(Config{
		Binary:     "true",
		Remote:     "seedbox",
		SourceRoot: "/downloads",
		DestRoot:   dest,
	})

	job := reconcile.Job{Hash: "AAA", Name: "Movie.2024", Category: "radarr", ContentPath: "/downloads/Movie.2024"}
	require.NoError(t, c.Copy(context.Background(), job))

	info, err := os.Stat(filepath.Join(dest, "radarr", "Movie.2024"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCopy_NonZeroExitIsTransferIOError(t *testing.T) {
	t.Parallel()
	requireUnix(t)

	c := NewCopier(Config{
		Binary:     "false",
		Remote:     "seedbox",
		SourceRoot: "/downloads",
		DestRoot:   t.TempDir(),
	})

	err := c.Copy(context.Background(), reconcile.Job{Hash: "AAA", Name: "x", Category: "radarr", ContentPath: "/downloads/x"})
	require.ErrorIs(t, err, reconcile.ErrTransferIO)
}

func TestCopy_TimeoutIsTransferTimeout(t *testing.T) {
	t.Parallel()
	requireUnix(t)

	script := writeScript(t, "#!/bin/sh\nsleep 5\n")
	c := NewCopier(Config{
		Binary:     script,
		Remote:     "seedbox",
		SourceRoot: "/downloads",
		DestRoot:   t.TempDir(),
		Timeout:    100 * time.Millisecond,
	})

	err := c.Copy(context.Background(), reconcile.Job{Hash: "AAA", Name: "x", Category: "radarr", ContentPath: "/downloads/x"})
	require.ErrorIs(t, err, reconcile.ErrTransferTimeout)
}

func TestCopy_PermissionOutputIsDestinationUnwritable(t *testing.T) {
	t.Parallel()
	requireUnix(t)

	script := writeScript(t, "#!/bin/sh\necho 'Failed to copy: permission denied' >&2\nexit 1\n")
	c := NewCopier(Config{
		Binary:     script,
		Remote:     "seedbox",
		SourceRoot: "/downloads",
		DestRoot:   t.TempDir(),
	})

	err := c.Copy(context.Background(), reconcile.Job{Hash: "AAA", Name: "x", Category: "radarr", ContentPath: "/downloads/x"})
	require.ErrorIs(t, err, reconcile.ErrDestinationUnwritable)
}

func TestCopy_UnwritableDestRoot(t *testing.T) {
	t.Parallel()
	requireUnix(t)
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o700) })

	c := NewCopier(Config{
		Binary:     "true",
		Remote:     "seedbox",
		SourceRoot: "/downloads",
		DestRoot:   filepath.Join(parent, "dest"),
	})

	err := c.Copy(context.Background(), reconcile.Job{Hash: "AAA", Name: "x", Category: "radarr", ContentPath: "/downloads/x"})
	require.ErrorIs(t, err, reconcile.ErrDestinationUnwritable)
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix shell")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "fake-rclone.sh")
	require.NoError(t, os.WriteFile(script, []byte(body), 0o700))
	return script
}
