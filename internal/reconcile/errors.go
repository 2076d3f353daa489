// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reconcile

import "errors"

// Pass-level errors. A listing failure aborts the pass: without an
// authoritative job list there is nothing safe to do.
var (
	// ErrSourceUnavailable indicates the tracker could not be reached or
	// refused authentication.
	ErrSourceUnavailable = errors.New("job source unavailable")

	// ErrSourceProtocol indicates the tracker answered with something we
	// could not parse.
	ErrSourceProtocol = errors.New("job source protocol error")
)

// Job-level errors. All of these leave the job untagged so the next pass
// retries it.
var (
	// ErrTagWrite indicates the pulled tag could not be written after a
	// successful copy. The content is at the destination but the job stays
	// eligible, so the next pass may transfer it again (at-least-once).
	ErrTagWrite = errors.New("tag write failed")

	// ErrTransferTimeout indicates the copy exceeded its deadline.
	ErrTransferTimeout = errors.New("transfer timed out")

	// ErrTransferIO indicates the copy tool failed mid-transfer, including
	// the case where the source path no longer exists.
	ErrTransferIO = errors.New("transfer i/o error")

	// ErrDestinationUnwritable indicates the destination root rejected
	// writes (permissions, missing mount, full disk).
	ErrDestinationUnwritable = errors.New("destination unwritable")
)
