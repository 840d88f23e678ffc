package storage

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T, dir string) *Badger {
	t.Helper()

	cfg := DefaultBadgerConfig(dir)
	cfg.GCInterval = 0 // no background GC in tests

	b, err := OpenBadger(cfg, slog.Default())
	require.NoError(t, err)
	return b
}

func TestBadger_BasicOperations(t *testing.T) {
	b := openTestBadger(t, t.TempDir())
	defer b.Close()

	t.Run("absent key", func(t *testing.T) {
		_, ok, err := b.GetItem("missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, b.SetItem("k", `{"a":1}`))

		v, ok, err := b.GetItem("k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"a":1}`, v)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, b.SetItem("gone", "1"))
		require.NoError(t, b.RemoveItem("gone"))

		_, ok, err := b.GetItem("gone")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys by prefix", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, b.SetItem(fmt.Sprintf("user.%d", i), "x"))
		}

		keys, err := b.Keys("user.")
		require.NoError(t, err)
		assert.Equal(t, []string{"user.0", "user.1", "user.2"}, keys)
	})
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	b := openTestBadger(t, dir)
	require.NoError(t, b.SetItem("k", "100"))
	require.NoError(t, b.Close())

	b = openTestBadger(t, dir)
	defer b.Close()

	v, ok, err := b.GetItem("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "100", v)
}

func TestBadger_InMemory(t *testing.T) {
	b, err := OpenBadger(BadgerConfig{InMemory: true}, nil)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.SetItem("k", "v"))
	v, ok, err := b.GetItem("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	reclaimed, err := b.GC()
	require.NoError(t, err)
	assert.Zero(t, reclaimed)
}

func TestBadger_RequiresDir(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{}, nil)
	assert.Error(t, err)
}

func TestBadger_Closed(t *testing.T) {
	b := openTestBadger(t, t.TempDir())
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "Close should be idempotent")

	_, _, err := b.GetItem("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.SetItem("k", "v"), ErrClosed)
	_, err = b.Keys("")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBadger_GC(t *testing.T) {
	b := openTestBadger(t, t.TempDir())
	defer b.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, b.SetItem("k", fmt.Sprintf("value-%d", i)))
	}

	_, err := b.GC()
	require.NoError(t, err)
	assert.NotZero(t, b.Stats().LastGCTime)
}

func TestBadger_RegisterMetrics(t *testing.T) {
	b := openTestBadger(t, t.TempDir())
	defer b.Close()

	reg := prometheus.NewRegistry()
	require.NoError(t, b.RegisterMetrics(reg, "atomstore"))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["atomstore_badger_lsm_size_bytes"])
	assert.True(t, names["atomstore_badger_value_log_size_bytes"])
	assert.True(t, names["atomstore_badger_gc_bytes_reclaimed_total"])

	assert.Error(t, b.RegisterMetrics(reg, "atomstore"), "duplicate registration should fail")
}
