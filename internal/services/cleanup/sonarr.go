// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package cleanup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedpull/pkg/arr"
)

// sonarrAPI is the subset of the Sonarr client the service needs. Extracted
// as an interface for testing.
type sonarrAPI interface {
	Series(ctx context.Context) ([]arr.Series, error)
	EpisodeFiles(ctx context.Context, seriesID int) ([]arr.EpisodeFile, error)
}

// fileKey identifies an imported file by basename and size. Paths differ
// between the destination tree and the library, the pair survives the move.
type fileKey struct {
	base string
	size int64
}

// SonarrService deletes destination files that Sonarr has already imported.
type SonarrService struct {
	cfg    Config
	client sonarrAPI
}

func NewSonarrService(cfg Config, client sonarrAPI) *SonarrService {
	return &SonarrService{cfg: cfg, client: client}
}

// Run builds the imported-file index from Sonarr and deletes matching files
// under the destination subdirectory.
func (s *SonarrService) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}

	targetRoot := filepath.Join(s.cfg.DestRoot, s.cfg.Subdir)
	if info, err := os.Stat(targetRoot); err != nil || !info.IsDir() {
		return stats, errors.Errorf("cleanup target is not a directory: %s", targetRoot)
	}

	index, err := s.buildIndex(ctx)
	if err != nil {
		return stats, err
	}
	log.Info().Int("files", len(index)).Str("root", targetRoot).Msg("built imported episode file index")

	now := time.Now()

	err = filepath.WalkDir(targetRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stats.Scanned++

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if s.cfg.MinAge > 0 && now.Sub(info.ModTime()) < s.cfg.MinAge {
			stats.SkippedYoung++
			return nil
		}

		if _, ok := index[fileKey{base: d.Name(), size: info.Size()}]; !ok {
			return nil
		}
		stats.Matched++

		if s.cfg.DryRun {
			log.Info().Str("path", path).Msg("dry run: would delete imported file")
			return nil
		}

		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to delete imported file")
			return nil
		}
		stats.Deleted++
		log.Info().Str("path", path).Msg("deleted imported file")

		if s.cfg.CleanEmptyDirs {
			stats.DirsDeleted += pruneEmptyDirs(targetRoot, filepath.Dir(path), s.cfg.DryRun)
		}
		return nil
	})
	if err != nil {
		return stats, errors.Wrap(err, "cleanup walk aborted")
	}

	log.Info().
		Int("scanned", stats.Scanned).
		Int("matched", stats.Matched).
		Int("deleted", stats.Deleted).
		Int("skippedYoung", stats.SkippedYoung).
		Bool("dryRun", s.cfg.DryRun).
		Msg("sonarr cleanup finished")

	return stats, nil
}

func (s *SonarrService) buildIndex(ctx context.Context) (map[fileKey]struct{}, error) {
	series, err := s.client.Series(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list series")
	}

	index := make(map[fileKey]struct{})
	for _, sr := range series {
		files, err := s.client.EpisodeFiles(ctx, sr.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list episode files for series %d", sr.ID)
		}
		for _, f := range files {
			if f.Path == "" || f.Size <= 0 {
				continue
			}
			index[fileKey{base: filepath.Base(f.Path), size: f.Size}] = struct{}{}
		}
	}
	return index, nil
}
