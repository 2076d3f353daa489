// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package cleanup removes files from the destination tree once the arr
// application has imported them into its own library.
package cleanup

import "time"

// Config holds the settings shared by the cleanup services.
type Config struct {
	// DestRoot is the root the pull passes copy into.
	DestRoot string

	// Subdir is the category subdirectory under DestRoot to clean.
	Subdir string

	// DryRun logs what would be deleted without touching the filesystem.
	// Deletion must be opted into explicitly.
	DryRun bool

	// MinAge protects recently written files from deletion. Files younger
	// than this are left alone even when they match.
	MinAge time.Duration

	// CleanEmptyDirs removes directories left empty by a deletion.
	CleanEmptyDirs bool

	// HistoryWindow bounds how far back imported-file history is read.
	// Only used by the Lidarr service.
	HistoryWindow time.Duration
}

// DefaultConfig returns the conservative defaults: dry run on, one hour of
// age protection.
func DefaultConfig() Config {
	return Config{
		DryRun:         true,
		MinAge:         time.Hour,
		CleanEmptyDirs: true,
		HistoryWindow:  7 * 24 * time.Hour,
	}
}

// Stats summarizes a cleanup run.
type Stats struct {
	Scanned      int
	Matched      int
	Deleted      int
	SkippedYoung int
	NfoDeleted   int
	DirsDeleted  int
}
