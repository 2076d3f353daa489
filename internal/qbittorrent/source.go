// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedpull/internal/reconcile"
)

const (
	listRetryAttempts = 3
	listRetryDelay    = 2 * time.Second
)

// torrentLister is the slice of the WebAPI the source needs; satisfied by
// *Client and stubbed in tests.
type torrentLister interface {
	GetTorrentsCtx(ctx context.Context, o qbt.TorrentFilterOptions) ([]qbt.Torrent, error)
	AddTagsCtx(ctx context.Context, hashes []string, tags string) error
	CreateTagsCtx(ctx context.Context, tags []string) error
	NeedsCreateTags() bool
}

// Source adapts the qBittorrent WebAPI to the reconcile.JobSource contract.
type Source struct {
	client        torrentLister
	pulledTag     string
	retryAttempts uint
	retryDelay    time.Duration

	mu         sync.Mutex
	tagCreated bool
}

// NewSource builds a Source that marks jobs with pulledTag.
func NewSource(client *Client, pulledTag string) *Source {
	return &Source{
		client:        client,
		pulledTag:     pulledTag,
		retryAttempts: listRetryAttempts,
		retryDelay:    listRetryDelay,
	}
}

// ListJobs returns completed torrents in the allowed categories, deduplicated
// by hash. Transient listing failures are retried before the error is
// classified for the engine.
func (s *Source) ListJobs(ctx context.Context, categories []string) ([]reconcile.Job, error) {
	var jobs []reconcile.Job
	seen := make(map[string]struct{})

	attempts := s.retryAttempts
	if attempts == 0 {
		attempts = 1
	}

	for _, category := range categories {
		var torrents []qbt.Torrent
		err := retry.Do(
			func() error {
				var listErr error
				torrents, listErr = s.client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{
					Filter:   qbt.TorrentFilterCompleted,
					Category: category,
				})
				return listErr
			},
			retry.Attempts(attempts),
			retry.Delay(s.retryDelay),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			return nil, classifyListError(category, err)
		}

		for _, torrent := range torrents {
			hash := strings.TrimSpace(torrent.Hash)
			if hash == "" {
				log.Warn().Str("name", torrent.Name).Msg("torrent without hash, skipping")
				continue
			}
			if _, dup := seen[hash]; dup {
				continue
			}
			// The completed filter should guarantee this, but progress is
			// the authoritative signal and cheap to double-check.
			if torrent.Progress < 1.0 {
				continue
			}
			seen[hash] = struct{}{}
			jobs = append(jobs, reconcile.Job{
				Hash:        hash,
				Name:        torrent.Name,
				Category:    torrent.Category,
				ContentPath: torrent.ContentPath,
				Complete:    true,
				Tags:        reconcile.SplitTags(torrent.Tags),
			})
		}
	}

	log.Debug().
		Strs("categories", categories).
		Int("jobs", len(jobs)).
		Msg("listed completed jobs")
	return jobs, nil
}

// MarkPulled adds the pulled tag to the job. Adding a tag a torrent already
// carries is a remote no-op, so the call is idempotent.
func (s *Source) MarkPulled(ctx context.Context, job reconcile.Job) error {
	if err := s.ensureTag(ctx); err != nil {
		return err
	}

	if err := s.client.AddTagsCtx(ctx, []string{job.Hash}, s.pulledTag); err != nil {
		return fmt.Errorf("%w: tagging %s: %s", reconcile.ErrTagWrite, job.Hash, err)
	}

	log.Debug().
		Str("hash", job.Hash).
		Str("tag", s.pulledTag).
		Msg("marked job pulled")
	return nil
}

// ensureTag creates the pulled tag on servers that require it before tags
// can be assigned. Concurrent markers serialize here so the tag is created
// once per process; a failed create is retried by the next marker.
func (s *Source) ensureTag(ctx context.Context) error {
	if !s.client.NeedsCreateTags() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tagCreated {
		return nil
	}
	if err := s.client.CreateTagsCtx(ctx, []string{s.pulledTag}); err != nil {
		return fmt.Errorf("%w: creating tag %q: %s", reconcile.ErrTagWrite, s.pulledTag, err)
	}
	s.tagCreated = true
	return nil
}

// classifyListError maps transport failures to the engine's pass-level
// taxonomy: decode errors mean the tracker answered garbage, everything else
// means it was unreachable or refused us.
func classifyListError(category string, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: listing category %q: %s", reconcile.ErrSourceProtocol, category, err)
	}
	return fmt.Errorf("%w: listing category %q: %s", reconcile.ErrSourceUnavailable, category, err)
}
