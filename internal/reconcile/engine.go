// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package reconcile decides, for each completed job the tracker reports,
// whether its content still needs to be copied to the destination, and
// records success by tagging the job on the tracker. The pulled tag is the
// commit point: a job is copied at most once while its tag survives, and a
// crash mid-pass simply leaves the remaining jobs for the next pass.
package reconcile

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// JobSource lists completed jobs and persists the pulled marker. ListJobs
// must return only complete jobs in the requested categories, deduplicated
// by hash; failures are classified as ErrSourceUnavailable or
// ErrSourceProtocol. MarkPulled must be effectively idempotent.
type JobSource interface {
	ListJobs(ctx context.Context, categories []string) ([]Job, error)
	MarkPulled(ctx context.Context, job Job) error
}

// Copier transfers one job's content tree to the destination. On failure the
// destination must be left so that re-invoking Copy with the same job
// converges: no duplicate partial trees, no truncated files passed off as
// complete. Failures are classified as ErrTransferTimeout, ErrTransferIO or
// ErrDestinationUnwritable.
type Copier interface {
	Copy(ctx context.Context, job Job) error
}

// Journal is an optional local ledger of pulled jobs, reconciled against the
// tracker's tag state. A nil Journal means the tag is the sole authority.
type Journal interface {
	IsPulled(ctx context.Context, hash string) (bool, error)
	MarkPulled(ctx context.Context, job Job) error
}

// Config controls one engine instance.
type Config struct {
	Categories    []string
	PulledTag     string
	MaxConcurrent int
}

// Engine runs reconciliation passes. It owns no persistent state and holds
// no I/O of its own beyond the three collaborators.
type Engine struct {
	source  JobSource
	copier  Copier
	journal Journal
	cfg     Config
}

// NewEngine constructs an Engine. journal may be nil.
func NewEngine(cfg Config, source JobSource, copier Copier, journal Journal) *Engine {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Engine{
		source:  source,
		copier:  copier,
		journal: journal,
		cfg:     cfg,
	}
}

// RunOnce executes a single reconciliation pass. A listing failure aborts
// the pass and is returned as the error with a zero Result; job-level
// failures are isolated per job and surface only in the Result.
func (e *Engine) RunOnce(ctx context.Context) (Result, error) {
	jobs, err := e.source.ListJobs(ctx, e.cfg.Categories)
	if err != nil {
		return Result{}, err
	}

	result := Result{Considered: len(jobs)}
	if len(jobs) == 0 {
		return result, nil
	}

	outcomes := make([]JobOutcome, len(jobs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrent)

	for i, job := range jobs {
		g.Go(func() error {
			outcome := e.processJob(gctx, job)
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; per-job faults live in their outcomes.
	_ = g.Wait()

	for _, o := range outcomes {
		result.Outcomes = append(result.Outcomes, o)
		switch o.Outcome {
		case OutcomeCopied:
			result.Eligible++
			result.Copied++
		case OutcomeAlreadyPulled:
			result.AlreadyPulled++
		case OutcomeFailed:
			result.Eligible++
			result.Failed++
		}
	}

	return result, nil
}

// processJob owns the full copy-then-mark sequence for one job. Outcomes of
// other jobs are independent of this one.
func (e *Engine) processJob(ctx context.Context, job Job) JobOutcome {
	if job.HasTag(e.cfg.PulledTag) {
		log.Debug().
			Str("hash", job.Hash).
			Str("name", job.Name).
			Msg("already pulled, skipping")
		return JobOutcome{Hash: job.Hash, Name: job.Name, Outcome: OutcomeAlreadyPulled}
	}

	// With a journal enabled, a journalled job whose tag vanished gets its
	// tag restored instead of a redundant transfer.
	if e.journal != nil {
		pulled, err := e.journal.IsPulled(ctx, job.Hash)
		if err != nil {
			log.Warn().Err(err).Str("hash", job.Hash).Msg("journal lookup failed, proceeding without it")
		} else if pulled {
			log.Warn().
				Str("hash", job.Hash).
				Str("name", job.Name).
				Msg("pulled tag missing on tracker but present in journal, restoring tag")
			if err := e.source.MarkPulled(ctx, job); err != nil {
				log.Error().Err(err).Str("hash", job.Hash).Msg("failed to restore pulled tag")
				return JobOutcome{Hash: job.Hash, Name: job.Name, Outcome: OutcomeFailed, Err: err}
			}
			return JobOutcome{Hash: job.Hash, Name: job.Name, Outcome: OutcomeAlreadyPulled}
		}
	}

	log.Info().
		Str("hash", job.Hash).
		Str("name", job.Name).
		Str("category", job.Category).
		Msg("copying job content")

	if err := e.copier.Copy(ctx, job); err != nil {
		log.Error().Err(err).
			Str("hash", job.Hash).
			Str("name", job.Name).
			Msg("copy failed, job stays eligible for the next pass")
		return JobOutcome{Hash: job.Hash, Name: job.Name, Outcome: OutcomeFailed, Err: err}
	}

	if err := e.source.MarkPulled(ctx, job); err != nil {
		// Content is at the destination but the commit did not happen; the
		// next pass retries the whole job. Accepted at-least-once fallback.
		log.Error().Err(err).
			Str("hash", job.Hash).
			Str("name", job.Name).
			Msg("copy succeeded but tag write failed, job will be retried")
		return JobOutcome{Hash: job.Hash, Name: job.Name, Outcome: OutcomeFailed, Err: err}
	}

	if e.journal != nil {
		if err := e.journal.MarkPulled(ctx, job); err != nil {
			// The tag is written, so correctness does not depend on this.
			log.Warn().Err(err).Str("hash", job.Hash).Msg("failed to journal pulled job")
		}
	}

	log.Info().
		Str("hash", job.Hash).
		Str("name", job.Name).
		Msg("job copied and marked pulled")
	return JobOutcome{Hash: job.Hash, Name: job.Name, Outcome: OutcomeCopied}
}
