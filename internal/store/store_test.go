package store_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-forge/internal/content"
	"github.com/jonesrussell/north-cloud/content-forge/internal/store"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := store.New(t.TempDir())

	// Missing files are empty categories.
	items, err := s.LoadCuriosities("space")
	require.NoError(t, err)
	assert.Empty(t, items)

	saved := []content.Curiosity{
		{ID: "space-1", CategoryID: "space", Title: "Neutron stars spin fast"},
		{ID: "space-2", CategoryID: "space", Title: "Saturn would float"},
	}
	require.NoError(t, s.SaveCuriosities("space", saved))

	loaded, err := s.LoadCuriosities("space")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	count, err := s.Count(content.KindCuriosity, "space")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Quiz files live in a separate tree with separate counts.
	count, err = s.Count(content.KindQuiz, "space")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_FileIsAlwaysCompleteArray(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.New(dir)

	require.NoError(t, s.SaveQuizzes("history", nil))

	data, err := os.ReadFile(s.Path(content.KindQuiz, "history"))
	require.NoError(t, err)

	// Even an empty category serializes as a parseable array, not null.
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "["))

	// No temp files left behind after a successful commit.
	entries, err := os.ReadDir(filepath.Dir(s.Path(content.KindQuiz, "history")))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_CrashedWriteNeverObservable(t *testing.T) {
	t.Parallel()

	s := store.New(t.TempDir())

	committed := []content.Curiosity{{ID: "space-1", CategoryID: "space", Title: "Committed"}}
	require.NoError(t, s.SaveCuriosities("space", committed))

	// Simulate a crash between the temp write and the rename: a stray
	// half-written temp file next to the category file.
	path := s.Path(content.KindCuriosity, "space")
	stray := path + ".tmp-crashed"
	require.NoError(t, os.WriteFile(stray, []byte(`[{"id": "spa`), 0o644))

	// The last committed state is still fully readable.
	loaded, err := s.LoadCuriosities("space")
	require.NoError(t, err)
	assert.Equal(t, committed, loaded)

	// And the next commit replaces the file completely.
	next := append(committed, content.Curiosity{ID: "space-2", CategoryID: "space", Title: "Next"})
	require.NoError(t, s.SaveCuriosities("space", next))

	loaded, err = s.LoadCuriosities("space")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestCheckpointStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checkpoints.json")

	c := store.NewCheckpointStore(path)
	require.NoError(t, c.Load()) // missing file starts from zero

	require.NoError(t, c.Advance("space", content.KindCuriosity))
	require.NoError(t, c.Advance("space", content.KindCuriosity))
	require.NoError(t, c.Advance("space", content.KindQuiz))

	cp := c.Get("space")
	assert.Equal(t, 2, cp.CuriositiesBatchesProcessed)
	assert.Equal(t, 1, cp.QuizzesBatchesProcessed)
	assert.False(t, cp.LastRunAt.IsZero())

	// A fresh store reloads the persisted counters.
	reloaded := store.NewCheckpointStore(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, cp.CuriositiesBatchesProcessed, reloaded.Get("space").CuriositiesBatchesProcessed)
	assert.Zero(t, reloaded.Get("unknown"))
}

func TestLockManager(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "forge.lock")

	first := store.NewLockManager(path)
	require.NoError(t, first.Acquire("gemini-2.0-flash", false))

	// A second acquisition without force fails fast.
	second := store.NewLockManager(path)
	err := second.Acquire("gemini-2.0-flash", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrLockHeld))

	// Force overwrites the stale lock.
	require.NoError(t, second.Acquire("gemini-2.0-flash", true))

	require.NoError(t, second.Release())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Releasing an already-released lock is a no-op.
	require.NoError(t, second.Release())
}

func TestLockManager_CorruptLockStillBlocks(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "forge.lock")
	require.NoError(t, os.WriteFile(path, []byte(`{"ownerPid": 12`), 0o644))

	// A lock file that cannot be parsed still marks the directory as
	// owned; only force may proceed past it.
	m := store.NewLockManager(path)
	err := m.Acquire("gemini-2.0-flash", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrLockHeld))

	require.NoError(t, m.Acquire("gemini-2.0-flash", true))
	require.NoError(t, m.Release())
}
