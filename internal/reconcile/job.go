// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reconcile

import "strings"

// Job is one completed download reported by the tracker. Jobs are fetched
// fresh each pass and never cached across passes; the pulled tag on the
// tracker is the only durable state.
type Job struct {
	Hash        string
	Name        string
	Category    string
	ContentPath string
	Complete    bool
	Tags        []string
}

// HasTag reports whether the job carries the given tag. Tag comparison is
// case-sensitive to match qBittorrent's own behavior.
func (j Job) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Outcome describes what happened to a single job during a pass.
type Outcome string

const (
	OutcomeCopied        Outcome = "copied"
	OutcomeAlreadyPulled Outcome = "skipped-already-pulled"
	OutcomeFailed        Outcome = "failed"
)

// JobOutcome records the per-job result of one pass.
type JobOutcome struct {
	Hash    string
	Name    string
	Outcome Outcome
	Err     error
}

// Result aggregates one reconciliation pass.
type Result struct {
	Considered    int
	Eligible      int
	Copied        int
	AlreadyPulled int
	Failed        int
	Outcomes      []JobOutcome
}

// SplitTags parses qBittorrent's comma-separated tag string into a clean
// slice, dropping empty entries and surrounding whitespace.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var cleaned []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
