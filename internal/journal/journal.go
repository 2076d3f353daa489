// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package journal persists pull records in a local SQLite database.
//
// The journal is strictly supplementary. The pulled tag on the tracker side
// remains the durable marker; the journal only lets a pass restore a tag that
// was lost out of band without transferring the payload again.
package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/autobrr/seedpull/internal/reconcile"
)

const schema = `
CREATE TABLE IF NOT EXISTS pulls (
	hash      TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	category  TEXT NOT NULL,
	pulled_at TIMESTAMP NOT NULL
);
`

// Journal implements reconcile.Journal on top of SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path and applies the schema.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create journal directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal database")
	}

	// single writer, same as a WAL-backed app database
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to execute %s", pragma)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to apply journal schema")
	}

	return &Journal{db: db}, nil
}

// IsPulled reports whether a pull record exists for the given hash.
func (j *Journal) IsPulled(ctx context.Context, hash string) (bool, error) {
	var one int
	err := j.db.QueryRowContext(ctx, "SELECT 1 FROM pulls WHERE hash = ?", hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to query journal")
	}
	return true, nil
}

// MarkPulled records a completed pull. Re-recording the same hash is a no-op.
func (j *Journal) MarkPulled(ctx context.Context, job reconcile.Job) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO pulls (hash, name, category, pulled_at) VALUES (?, ?, ?, ?)",
		job.Hash, job.Name, job.Category, time.Now().UTC(),
	)
	return errors.Wrap(err, "failed to record pull")
}

func (j *Journal) Close() error {
	return j.db.Close()
}
