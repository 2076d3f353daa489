// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/autobrr/seedpull/internal/buildinfo"
	"github.com/autobrr/seedpull/internal/config"
	"github.com/autobrr/seedpull/internal/logger"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "seedpull",
		Short:         "Pull completed torrent downloads from a seedbox exactly once",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file or directory")

	rootCmd.AddCommand(RunPullCommand(&configPath))
	rootCmd.AddCommand(RunServeCommand(&configPath))
	rootCmd.AddCommand(RunCleanupCommand(&configPath))
	rootCmd.AddCommand(RunVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig loads configuration and wires up the global logger.
func initConfig(configPath string) (*config.AppConfig, error) {
	appConfig, err := config.New(configPath, buildinfo.Version)
	if err != nil {
		return nil, err
	}

	logger.Setup(appConfig.Get())
	return appConfig, nil
}
