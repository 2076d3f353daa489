// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package rclone invokes the rclone binary to pull one job's content tree
// from the seedbox remote to the local destination. rclone's own size/
// checksum checks plus --ignore-existing make a retried copy converge
// instead of duplicating partial trees.
package rclone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Hellseher/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/seedpull/internal/reconcile"
)

// Config holds the transfer tool settings.
type Config struct {
	// Binary is the rclone executable, looked up on PATH when relative.
	Binary string

	// Remote is the rclone remote name holding the seedbox filesystem.
	Remote string

	// ConfigPath optionally points rclone at a non-default config file.
	ConfigPath string

	// SourceRoot is the directory on the remote under which completed
	// content lives.
	SourceRoot string

	// DestRoot is the local root; content lands in DestRoot/category/name.
	DestRoot string

	Transfers    int
	Checkers     int
	Retries      int
	RetriesSleep time.Duration

	// Timeout bounds a single job's transfer. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
}

// Copier implements reconcile.Copier by shelling out to rclone.
type Copier struct {
	cfg Config
}

// NewCopier returns a Copier with defaults filled in.
func NewCopier(cfg Config) *Copier {
	if cfg.Binary == "" {
		cfg.Binary = "rclone"
	}
	if cfg.Transfers <= 0 {
		cfg.Transfers = 4
	}
	if cfg.Checkers <= 0 {
		cfg.Checkers = 8
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 5
	}
	if cfg.RetriesSleep <= 0 {
		cfg.RetriesSleep = 10 * time.Second
	}
	return &Copier{cfg: cfg}
}

// Copy transfers the job's content tree to DestRoot/category/name and blocks
// until rclone exits or the context is done.
func (c *Copier) Copy(ctx context.Context, job reconcile.Job) error {
	src := c.sourceArg(job.ContentPath)
	dest := filepath.Join(c.cfg.DestRoot, job.Category, job.Name)

	if err := os.MkdirAll(dest, 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %s", reconcile.ErrDestinationUnwritable, dest, err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	args := c.buildArgs(src, dest)
	cmd := exec.CommandContext(ctx, c.cfg.Binary, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	log.Debug().
		Str("hash", job.Hash).
		Str("name", job.Name).
		Str("command", shellquote.Join(append([]string{c.cfg.Binary}, args...)...)).
		Msg("invoking rclone")

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err == nil {
		log.Debug().
			Str("hash", job.Hash).
			Str("name", job.Name).
			Dur("duration", duration).
			Msg("rclone copy completed")
		return nil
	}

	return c.classify(ctx, job, err, output.String(), duration)
}

// sourceArg builds the remote:path argument. The tracker usually reports an
// absolute content path on the seedbox; when it sits under SourceRoot the
// relative part is preserved, otherwise the basename is used as a fallback.
func (c *Copier) sourceArg(contentPath string) string {
	cp := strings.TrimRight(contentPath, "/")
	root := strings.TrimRight(c.cfg.SourceRoot, "/")

	switch {
	case cp == root:
		return c.cfg.Remote + ":" + root
	case strings.HasPrefix(cp, root+"/"):
		return c.cfg.Remote + ":" + cp
	default:
		return c.cfg.Remote + ":" + root + "/" + path.Base(cp)
	}
}

func (c *Copier) buildArgs(src, dest string) []string {
	args := []string{
		"copy", src, dest,
		"--transfers", strconv.Itoa(c.cfg.Transfers),
		"--checkers", strconv.Itoa(c.cfg.Checkers),
		"--retries", strconv.Itoa(c.cfg.Retries),
		"--retries-sleep", c.cfg.RetriesSleep.String(),
		"--ignore-existing",
		"--log-level", "INFO",
	}
	if c.cfg.ConfigPath != "" {
		args = append(args, "--config", c.cfg.ConfigPath)
	}
	return args
}

// classify maps an rclone failure to the engine's job-level taxonomy.
func (c *Copier) classify(ctx context.Context, job reconcile.Job, err error, output string, duration time.Duration) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	log.Error().
		Err(err).
		Str("hash", job.Hash).
		Str("name", job.Name).
		Int("exitCode", exitCode).
		Dur("duration", duration).
		Str("output", tail(output, 2000)).
		Msg("rclone copy failed")

	if ctx.Err() != nil {
		return fmt.Errorf("%w: after %s: %s", reconcile.ErrTransferTimeout, duration.Round(time.Second), ctx.Err())
	}
	if containsAny(output, "permission denied", "read-only file system", "no space left on device") {
		return fmt.Errorf("%w: rclone exit %d", reconcile.ErrDestinationUnwritable, exitCode)
	}
	return fmt.Errorf("%w: rclone exit %d", reconcile.ErrTransferIO, exitCode)
}

func containsAny(s string, needles ...string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
