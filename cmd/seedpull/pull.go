// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/seedpull/internal/domain"
	"github.com/autobrr/seedpull/internal/journal"
	"github.com/autobrr/seedpull/internal/qbittorrent"
	"github.com/autobrr/seedpull/internal/rclone"
	"github.com/autobrr/seedpull/internal/reconcile"
)

// RunPullCommand runs a single reconciliation pass and exits.
func RunPullCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single pull pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := initConfig(*configPath)
			if err != nil {
				return err
			}

			cfg := appConfig.Get()
			if err := cfg.Validate(); err != nil {
				return err
			}

			engine, _, cleanup, err := buildEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := runPass(cmd.Context(), engine)
			if err != nil {
				return err
			}
			if result.Failed > 0 {
				return errors.Errorf("%d job(s) failed, will retry next pass", result.Failed)
			}
			return nil
		},
	}
}

// buildEngine wires the qBittorrent source, the rclone copier and the
// optional journal into a reconcile engine. The client is returned so serve
// mode can expose its health probe; the cleanup closes whatever was opened.
func buildEngine(ctx context.Context, cfg *domain.Config) (*reconcile.Engine, *qbittorrent.Client, func(), error) {
	client, err := qbittorrent.NewClient(ctx, qbittorrent.Config{
		Host:          cfg.Qbit.Host,
		Username:      cfg.Qbit.Username,
		Password:      cfg.Qbit.Password,
		BasicUsername: cfg.Qbit.BasicUsername,
		BasicPassword: cfg.Qbit.BasicPassword,
		Timeout:       time.Duration(cfg.Qbit.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	source := qbittorrent.NewSource(client, cfg.Pull.PulledTag)

	copier := rclone.NewCopier(rclone.Config{
		Binary:       cfg.Rclone.Binary,
		Remote:       cfg.Rclone.Remote,
		ConfigPath:   cfg.Rclone.ConfigPath,
		SourceRoot:   cfg.Rclone.SourceRoot,
		DestRoot:     cfg.Pull.DestRoot,
		Transfers:    cfg.Rclone.Transfers,
		Checkers:     cfg.Rclone.Checkers,
		Retries:      cfg.Rclone.Retries,
		RetriesSleep: 10 * time.Second,
		Timeout:      time.Duration(cfg.Rclone.TimeoutMinutes) * time.Minute,
	})

	cleanup := func() {}
	var ledger reconcile.Journal
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		ledger = j
		cleanup = func() { j.Close() }
	}

	engine := reconcile.NewEngine(reconcile.Config{
		Categories:    cfg.Pull.Categories,
		PulledTag:     cfg.Pull.PulledTag,
		MaxConcurrent: cfg.Pull.MaxConcurrent,
	}, source, copier, ledger)

	return engine, client, cleanup, nil
}

func runPass(ctx context.Context, engine *reconcile.Engine) (reconcile.Result, error) {
	start := time.Now()

	result, err := engine.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("pass aborted")
		return result, err
	}

	log.Info().
		Int("considered", result.Considered).
		Int("eligible", result.Eligible).
		Int("copied", result.Copied).
		Int("alreadyPulled", result.AlreadyPulled).
		Int("failed", result.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("pass finished")

	return result, nil
}
