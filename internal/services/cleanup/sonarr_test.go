// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/seedpull/pkg/arr"
)

type stubSonarr struct {
	series []arr.Series
	files  map[int][]arr.EpisodeFile
	err    error
}

func (s *stubSonarr) Series(_ context.Context) ([]arr.Series, error) {
	return s.series, s.err
}

func (s *stubSonarr) EpisodeFiles(_ context.Context, seriesID int) ([]arr.EpisodeFile, error) {
	return s.files[seriesID], nil
}

func writeAgedFile(t *testing.T, path string, size int, age time.Duration) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestSonarrRun_DeletesImportedFiles(t *testing.T) {
	destRoot := t.TempDir()
	imported := filepath.Join(destRoot, "sonarr", "Show.S01E01", "Show.S01E01.mkv")
	unknown := filepath.Join(destRoot, "sonarr", "Show.S01E02", "Show.S01E02.mkv")
	writeAgedFile(t, imported, 100, 2*time.Hour)
	writeAgedFile(t, unknown, 200, 2*time.Hour)

	client := &stubSonarr{
		series: []arr.Series{{ID: 1, Title: "Show"}},
		files: map[int][]arr.EpisodeFile{
			1: {{ID: 10, Path: "/tv/Show/Season 1/Show.S01E01.mkv", Size: 100}},
		},
	}

	cfg := DefaultConfig()
	cfg.DestRoot = destRoot
	cfg.Subdir = "sonarr"
	cfg.DryRun = false

	stats, err := NewSonarrService(cfg, client).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Deleted)

	assert.NoFileExists(t, imported)
	assert.FileExists(t, unknown)

	// the emptied job directory is pruned, the subdir root stays
	assert.NoDirExists(t, filepath.Join(destRoot, "sonarr", "Show.S01E01"))
	assert.DirExists(t, filepath.Join(destRoot, "sonarr"))
}

func TestSonarrRun_DryRunDeletesNothing(t *testing.T) {
	destRoot := t.TempDir()
	imported := filepath.Join(destRoot, "sonarr", "Show.S01E01.mkv")
	writeAgedFile(t, imported, 100, 2*time.Hour)

	client := &stubSonarr{
		series: []arr.Series{{ID: 1}},
		files: map[int][]arr.EpisodeFile{
			1: {{Path: "/tv/Show.S01E01.mkv", Size: 100}},
		},
	}

	cfg := DefaultConfig()
	cfg.DestRoot = destRoot
	cfg.Subdir = "sonarr"

	stats, err := NewSonarrService(cfg, client).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 0, stats.Deleted)
	assert.FileExists(t, imported)
}

func TestSonarrRun_MinAgeProtectsYoungFiles(t *testing.T) {
	destRoot := t.TempDir()
	young := filepath.Join(destRoot, "sonarr", "Show.S01E01.mkv")
	writeAgedFile(t, young, 100, time.Minute)

	client := &stubSonarr{
		series: []arr.Series{{ID: 1}},
		files: map[int][]arr.EpisodeFile{
			1: {{Path: "/tv/Show.S01E01.mkv", Size: 100}},
		},
	}

	cfg := DefaultConfig()
	cfg.DestRoot = destRoot
	cfg.Subdir = "sonarr"
	cfg.DryRun = false

	stats, err := NewSonarrService(cfg, client).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SkippedYoung)
	assert.Equal(t, 0, stats.Matched)
	assert.FileExists(t, young)
}

func TestSonarrRun_SizeMismatchIsNotMatched(t *testing.T) {
	destRoot := t.TempDir()
	path := filepath.Join(destRoot, "sonarr", "Show.S01E01.mkv")
	writeAgedFile(t, path, 100, 2*time.Hour)

	client := &stubSonarr{
		series: []arr.Series{{ID: 1}},
		files: map[int][]arr.EpisodeFile{
			1: {{Path: "/tv/Show.S01E01.mkv", Size: 999}},
		},
	}

	cfg := DefaultConfig()
	cfg.DestRoot = destRoot
	cfg.Subdir = "sonarr"
	cfg.DryRun = false

	stats, err := NewSonarrService(cfg, client).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Matched)
	assert.FileExists(t, path)
}

func TestSonarrRun_MissingTargetFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DestRoot = t.TempDir()
	cfg.Subdir = "sonarr"

	_, err := NewSonarrService(cfg, &stubSonarr{}).Run(context.Background())
	require.Error(t, err)
}
