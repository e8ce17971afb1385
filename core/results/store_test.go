package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(now time.Time) []Record {
	return []Record{
		{RunID: "a", Timestamp: now.Add(-2 * time.Hour), Instance: "j301_1", Status: "optimal", Profit: 12.5, Schedule: []int{0, 0, 3}},
		{RunID: "b", Timestamp: now.Add(-time.Hour), Instance: "j301_2", Status: "truncated", Profit: 3},
		{RunID: "c", Timestamp: now, Instance: "j301_1", Status: "optimal", Profit: 13},
	}
}

func TestStores_AppendQuery(t *testing.T) {
	dir := t.TempDir()
	backends := map[string]Config{
		"jsonl":    {Backend: "jsonl", Path: filepath.Join(dir, "runs.jsonl")},
		"rotating": {Backend: "rotating", Path: filepath.Join(dir, "rot", "runs.jsonl"), MaxSizeMB: 1},
		"sqlite":   {Backend: "sqlite", Path: filepath.Join(dir, "runs.db")},
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	for name, cfg := range backends {
		t.Run(name, func(t *testing.T) {
			store, err := Open(cfg)
			require.NoError(t, err)
			defer func() { _ = store.Close() }()
			ctx := context.Background()
			for _, rec := range sampleRecords(now) {
				require.NoError(t, store.Append(ctx, rec))
			}

			all, err := store.Query(ctx, Query{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []int{0, 0, 3}, all[0].Schedule)
			assert.True(t, all[0].Timestamp.Equal(now.Add(-2*time.Hour)))

			byInstance, err := store.Query(ctx, Query{Instance: "j301_1"})
			require.NoError(t, err)
			assert.Len(t, byInstance, 2)

			byStatus, err := store.Query(ctx, Query{Status: "truncated"})
			require.NoError(t, err)
			require.Len(t, byStatus, 1)
			assert.Equal(t, "b", byStatus[0].RunID)

			recent, err := store.Query(ctx, Query{Start: now.Add(-90 * time.Minute)})
			require.NoError(t, err)
			assert.Len(t, recent, 2)
		})
	}
}

func TestJSONLStore_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n{\"run_id\":\"x\",\"instance\":\"i\"}\n"), 0o644))
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	out, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0].RunID)
}

func TestRotatingJSONLStore_QueryIncludesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, Record{RunID: "old", Timestamp: time.Now()}))
	require.NoError(t, store.logger.Rotate())
	require.NoError(t, store.Append(ctx, Record{RunID: "new", Timestamp: time.Now()}))

	files, err := filepath.Glob(filepath.Join(filepath.Dir(path), "runs*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	out, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "old", out[0].RunID)
	assert.Equal(t, "new", out[1].RunID)
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "jsonl", cfg.Backend)
	assert.Equal(t, "results.jsonl", cfg.Path)
	assert.NoError(t, cfg.Validate())

	rot := Config{Backend: "rotating"}
	rot.SetDefaults()
	assert.Equal(t, 10, rot.MaxSizeMB)

	assert.Error(t, Config{Backend: "csv", Path: "x"}.Validate())
	assert.Error(t, Config{Backend: "jsonl"}.Validate())
	_, err := Open(Config{Backend: "bogus", Path: "x"})
	assert.Error(t, err)
}
