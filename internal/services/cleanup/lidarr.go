// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedpull/pkg/arr"
)

// lidarrAPI is the subset of the Lidarr client the service needs.
type lidarrAPI interface {
	HistorySince(ctx context.Context, since time.Time, eventType string) ([]arr.HistoryRecord, error)
}

// LidarrService deletes destination files that Lidarr has already imported.
// Unlike Sonarr, Lidarr reports the exact source path of each import, so the
// service works from import history instead of a basename index.
type LidarrService struct {
	cfg    Config
	client lidarrAPI
}

func NewLidarrService(cfg Config, client lidarrAPI) *LidarrService {
	return &LidarrService{cfg: cfg, client: client}
}

// Run reads recent import history and deletes the imported source paths
// under the destination subdirectory, then sweeps leftover .nfo files and
// empty directories around them.
func (l *LidarrService) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}

	targetRoot := filepath.Join(l.cfg.DestRoot, l.cfg.Subdir)
	if info, err := os.Stat(targetRoot); err != nil || !info.IsDir() {
		return stats, errors.Errorf("cleanup target is not a directory: %s", targetRoot)
	}

	imported, err := l.importedPaths(ctx)
	if err != nil {
		return stats, err
	}
	log.Info().Int("imports", len(imported)).Str("root", targetRoot).Msg("read lidarr import history")

	now := time.Now()

	for _, src := range imported {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		stats.Scanned++

		path := filepath.Clean(src)
		if !isUnderRoot(targetRoot, path) {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if l.cfg.MinAge > 0 && now.Sub(info.ModTime()) < l.cfg.MinAge {
			stats.SkippedYoung++
			continue
		}
		stats.Matched++

		if l.cfg.DryRun {
			log.Info().Str("path", path).Msg("dry run: would delete imported path")
			continue
		}

		// os.Remove on a directory only succeeds if it's empty
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to delete imported path")
			continue
		}
		stats.Deleted++
		log.Info().Str("path", path).Msg("deleted imported path")
	}

	l.sweepLeftovers(targetRoot, imported, now, &stats)

	log.Info().
		Int("scanned", stats.Scanned).
		Int("matched", stats.Matched).
		Int("deleted", stats.Deleted).
		Int("skippedYoung", stats.SkippedYoung).
		Int("nfoDeleted", stats.NfoDeleted).
		Int("dirsDeleted", stats.DirsDeleted).
		Bool("dryRun", l.cfg.DryRun).
		Msg("lidarr cleanup finished")

	return stats, nil
}

func (l *LidarrService) importedPaths(ctx context.Context) ([]string, error) {
	window := l.cfg.HistoryWindow
	if window <= 0 {
		window = DefaultConfig().HistoryWindow
	}

	records, err := l.client.HistorySince(ctx, time.Now().Add(-window), "downloadFolderImported")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read import history")
	}

	seen := make(map[string]struct{})
	for _, rec := range records {
		src := rec.Data["droppedPath"]
		if src == "" {
			src = rec.Data["sourcePath"]
		}
		if src == "" {
			continue
		}
		seen[src] = struct{}{}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// sweepLeftovers walks the directories touched by imports, removing stale
// .nfo files and directories left empty. Albums often leave an .nfo behind
// that blocks the empty-dir prune.
func (l *LidarrService) sweepLeftovers(targetRoot string, imported []string, now time.Time, stats *Stats) {
	seenDirs := make(map[string]struct{})

	for _, src := range imported {
		path := filepath.Clean(src)
		if !isUnderRoot(targetRoot, path) {
			continue
		}

		dir := path
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			dir = filepath.Dir(path)
		}

		for cur := dir; isUnderRoot(targetRoot, cur); cur = filepath.Dir(cur) {
			if _, ok := seenDirs[cur]; ok {
				break
			}
			seenDirs[cur] = struct{}{}

			l.deleteStaleNfos(cur, now, stats)
			if l.cfg.CleanEmptyDirs {
				stats.DirsDeleted += pruneEmptyDirs(targetRoot, cur, l.cfg.DryRun)
			}
		}
	}
}

func (l *LidarrService) deleteStaleNfos(dir string, now time.Time, stats *Stats) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".nfo") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if l.cfg.MinAge > 0 && now.Sub(info.ModTime()) < l.cfg.MinAge {
			continue
		}

		if l.cfg.DryRun {
			log.Info().Str("path", path).Msg("dry run: would delete leftover nfo")
			continue
		}

		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to delete leftover nfo")
			continue
		}
		stats.NfoDeleted++
		log.Debug().Str("path", path).Msg("deleted leftover nfo")
	}
}
