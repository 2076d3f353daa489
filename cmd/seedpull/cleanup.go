// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/seedpull/internal/buildinfo"
	"github.com/autobrr/seedpull/internal/domain"
	"github.com/autobrr/seedpull/internal/services/cleanup"
	"github.com/autobrr/seedpull/pkg/arr"
)

// RunCleanupCommand groups the destination cleanup subcommands.
func RunCleanupCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete destination files already imported by an arr application",
	}

	cmd.AddCommand(runCleanupSonarrCommand(configPath))
	cmd.AddCommand(runCleanupLidarrCommand(configPath))
	return cmd
}

func runCleanupSonarrCommand(configPath *string) *cobra.Command {
	var (
		subdir        string
		applyDeletes  bool
		keepEmptyDirs bool
	)

	cmd := &cobra.Command{
		Use:   "sonarr",
		Short: "Delete files Sonarr has imported into its library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := initConfig(*configPath)
			if err != nil {
				return err
			}

			cfg := appConfig.Get()
			if err := domain.ValidateArr("sonarr", cfg.Sonarr); err != nil {
				return err
			}

			client := arr.NewSonarr(arr.Config{
				Host:      cfg.Sonarr.URL,
				APIKey:    cfg.Sonarr.APIKey,
				UserAgent: buildinfo.UserAgent,
			})

			svc := cleanup.NewSonarrService(cleanupConfig(cfg, cfg.Sonarr, subdir, applyDeletes, keepEmptyDirs), client)

			stats, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			logCleanupHint(applyDeletes, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&subdir, "subdir", "sonarr", "Subdirectory under the destination root to clean")
	cmd.Flags().BoolVar(&applyDeletes, "delete", false, "Actually delete files instead of the default dry run")
	cmd.Flags().BoolVar(&keepEmptyDirs, "keep-empty-dirs", false, "Leave directories emptied by a deletion in place")

	return cmd
}

func runCleanupLidarrCommand(configPath *string) *cobra.Command {
	var (
		subdir        string
		applyDeletes  bool
		keepEmptyDirs bool
		sinceDays     int
	)

	cmd := &cobra.Command{
		Use:   "lidarr",
		Short: "Delete files Lidarr has imported into its library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := initConfig(*configPath)
			if err != nil {
				return err
			}

			cfg := appConfig.Get()
			if err := domain.ValidateArr("lidarr", cfg.Lidarr); err != nil {
				return err
			}

			client := arr.NewLidarr(arr.Config{
				Host:      cfg.Lidarr.URL,
				APIKey:    cfg.Lidarr.APIKey,
				UserAgent: buildinfo.UserAgent,
			})

			svcCfg := cleanupConfig(cfg, cfg.Lidarr, subdir, applyDeletes, keepEmptyDirs)
			svcCfg.HistoryWindow = time.Duration(sinceDays) * 24 * time.Hour

			svc := cleanup.NewLidarrService(svcCfg, client)

			stats, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			logCleanupHint(applyDeletes, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&subdir, "subdir", "lidarr", "Subdirectory under the destination root to clean")
	cmd.Flags().BoolVar(&applyDeletes, "delete", false, "Actually delete files instead of the default dry run")
	cmd.Flags().BoolVar(&keepEmptyDirs, "keep-empty-dirs", false, "Leave directories emptied by a deletion in place")
	cmd.Flags().IntVar(&sinceDays, "since-days", 7, "How many days of import history to consider")

	return cmd
}

func cleanupConfig(cfg *domain.Config, arrCfg domain.ArrConfig, subdir string, applyDeletes, keepEmptyDirs bool) cleanup.Config {
	out := cleanup.DefaultConfig()
	out.DestRoot = cfg.Pull.DestRoot
	out.Subdir = subdir
	out.DryRun = !applyDeletes
	out.CleanEmptyDirs = !keepEmptyDirs
	if arrCfg.MinAgeHours > 0 {
		out.MinAge = time.Duration(arrCfg.MinAgeHours) * time.Hour
	}
	return out
}

func logCleanupHint(applyDeletes bool, stats cleanup.Stats) {
	if !applyDeletes && stats.Matched > 0 {
		log.Info().Int("matched", stats.Matched).Msg("dry run only, pass --delete to remove matched files")
	}
}
