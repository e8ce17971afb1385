package app

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kilianp07/rcpspoc/config"
	"github.com/kilianp07/rcpspoc/core/bnb"
	"github.com/kilianp07/rcpspoc/core/model"
	"github.com/kilianp07/rcpspoc/core/results"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func forkInstance(name string) *model.Instance {
	return &model.Instance{
		Name:       name,
		NumJobs:    8,
		NumRes:     1,
		Durations:  []int{0, 3, 2, 2, 3, 1, 2, 0},
		Demands:    [][]int{{0}, {3}, {2}, {2}, {1}, {2}, {1}, {0}},
		Successors: [][]int{{1, 2}, {3}, {4}, {5}, {6}, {6}, {7}, {}},
		Capacities: []int{4},
		ZMax:       []int{2},
		Kappa:      []float64{1},
	}
}

func writeInstance(t *testing.T, dir, file string, inst *model.Instance) string {
	t.Helper()
	b, err := json.Marshal(inst)
	require.NoError(t, err)
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func newService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Results.Path = filepath.Join(t.TempDir(), "results.jsonl")
	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })
	return svc
}

func TestServiceSolve(t *testing.T) {
	svc := newService(t)
	path := writeInstance(t, t.TempDir(), "fork.json", forkInstance("fork"))

	run, err := svc.Solve(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, bnb.StatusOptimal, run.Result.Status)
	require.True(t, run.Result.Found())
	assert.True(t, run.Model.IsOvertimeFeasible(run.Result.Schedule))

	recs, err := svc.Store().Query(context.Background(), results.Query{Instance: "fork"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, run.Result.RunID, recs[0].RunID)
	assert.Equal(t, "optimal", recs[0].Status)
	assert.InDelta(t, run.Result.Profit, recs[0].Profit, 1e-9)
	assert.Equal(t, run.Result.Schedule.Makespan(), recs[0].Makespan)
}

func TestServiceSolveTruncated(t *testing.T) {
	svc := newService(t)
	m, err := svc.LoadModel(writeInstance(t, t.TempDir(), "unnamed.json", forkInstance("")))
	require.NoError(t, err)
	assert.Equal(t, "unnamed", m.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.SolveModel(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, bnb.StatusTruncated, res.Status)

	recs, err := svc.Store().Query(context.Background(), results.Query{Status: "truncated"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Zero(t, recs[0].Profit)
	assert.Empty(t, recs[0].Schedule)
}

func TestServiceBatch(t *testing.T) {
	svc := newService(t)
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(3))
	writeInstance(t, dir, "c.json", forkInstance("c"))
	writeInstance(t, dir, "a.json", model.RandomInstance(rng, 4, 2, 3, 4))
	writeInstance(t, dir, "b.json", model.RandomInstance(rng, 5, 1, 3, 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	rows, err := svc.Batch(context.Background(), dir, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[2].Instance)

	recs, err := svc.Store().Query(context.Background(), results.Query{})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestServiceBatchErrors(t *testing.T) {
	svc := newService(t)
	_, err := svc.Batch(context.Background(), filepath.Join(t.TempDir(), "absent"), 1)
	assert.Error(t, err)

	dir := t.TempDir()
	writeInstance(t, dir, "fork.json", forkInstance("fork"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	_, err = svc.Batch(context.Background(), dir, 0)
	assert.Error(t, err)
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Results.Backend = "csv"
	_, err := New(cfg)
	assert.Error(t, err)
}
