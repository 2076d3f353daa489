// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package cleanup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// isUnderRoot reports whether target sits below root. The root itself does
// not count as under root.
func isUnderRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return true
}

// pruneEmptyDirs removes start and its parents while they are empty,
// stopping at root. Root is never removed.
func pruneEmptyDirs(root, start string, dryRun bool) int {
	removed := 0
	cur := start

	for isUnderRoot(root, cur) {
		entries, err := os.ReadDir(cur)
		if err != nil || len(entries) > 0 {
			return removed
		}

		if dryRun {
			log.Info().Str("dir", cur).Msg("dry run: would remove empty directory")
			return removed
		}

		if err := os.Remove(cur); err != nil {
			return removed
		}
		removed++
		log.Debug().Str("dir", cur).Msg("removed empty directory")

		cur = filepath.Dir(cur)
	}

	return removed
}
