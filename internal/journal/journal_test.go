// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/seedpull/internal/reconcile"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "seedpull.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "nested", "dir", "seedpull.db"))
	require.NoError(t, err)
	defer j.Close()
}

func TestMarkAndLookup(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	pulled, err := j.IsPulled(ctx, "AAA")
	require.NoError(t, err)
	assert.False(t, pulled)

	job := reconcile.Job{Hash: "AAA", Name: "Movie.2024", Category: "radarr"}
	require.NoError(t, j.MarkPulled(ctx, job))

	pulled, err = j.IsPulled(ctx, "AAA")
	require.NoError(t, err)
	assert.True(t, pulled)

	pulled, err = j.IsPulled(ctx, "BBB")
	require.NoError(t, err)
	assert.False(t, pulled)
}

func TestMarkPulled_Idempotent(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	job := reconcile.Job{Hash: "AAA", Name: "Movie.2024", Category: "radarr"}
	require.NoError(t, j.MarkPulled(ctx, job))
	require.NoError(t, j.MarkPulled(ctx, job))

	pulled, err := j.IsPulled(ctx, "AAA")
	require.NoError(t, err)
	assert.True(t, pulled)
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedpull.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.MarkPulled(ctx, reconcile.Job{Hash: "AAA", Name: "x", Category: "radarr"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	pulled, err := j.IsPulled(ctx, "AAA")
	require.NoError(t, err)
	assert.True(t, pulled)
}
