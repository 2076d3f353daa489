// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/seedpull/internal/domain"
	"github.com/autobrr/seedpull/internal/logger"
	"github.com/autobrr/seedpull/internal/metrics"
)

// RunServeCommand runs pull passes on an interval until interrupted.
func RunServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run pull passes on an interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appConfig, err := initConfig(*configPath)
			if err != nil {
				return err
			}

			cfg := appConfig.Get()
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine, client, cleanup, err := buildEngine(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			// log level changes apply without a restart
			appConfig.Watch(func(next *domain.Config) {
				logger.SetLogLevel(next.LogLevel)
			})

			var manager *metrics.Manager
			if cfg.Serve.MetricsEnabled {
				manager = metrics.NewManager()
				server := metrics.NewServer(manager, cfg.Serve.MetricsHost, cfg.Serve.MetricsPort, client.HealthCheck)
				go func() {
					if err := server.Start(); err != nil {
						log.Error().Err(err).Msg("metrics server failed")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Shutdown(shutdownCtx)
				}()
			}

			interval := time.Duration(cfg.Serve.IntervalMinutes) * time.Minute
			if interval <= 0 {
				interval = 15 * time.Minute
			}

			log.Info().
				Str("version", cfg.Version).
				Str("webAPIVersion", client.WebAPIVersion()).
				Dur("interval", interval).
				Msg("starting seedpull")

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			// first pass runs immediately, passes never overlap
			for {
				start := time.Now()
				result, err := runPass(ctx, engine)
				if manager != nil {
					manager.RecordPass(result, time.Since(start), err)
				}

				select {
				case <-ctx.Done():
					log.Info().Msg("shutting down")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}
