package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rcpspoc/core/factory"
)

type recordSink struct {
	solves, progress int
	err              error
	closed           bool
}

func (r *recordSink) RecordSolve(SolveEvent) error {
	r.solves++
	return r.err
}

func (r *recordSink) RecordProgress(ProgressEvent) error {
	r.progress++
	return nil
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

type solveOnly struct{ n int }

func (s *solveOnly) RecordSolve(SolveEvent) error {
	s.n++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{err: errors.New("down")}
	s3 := &solveOnly{}
	m := NewMultiSink(s1, s2, s3)

	err := m.RecordSolve(SolveEvent{RunID: "r"})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, s1.solves, "a failing sink must not hide the others")
	assert.Equal(t, 1, s3.n)

	require.NoError(t, m.RecordProgress(ProgressEvent{}))
	assert.Equal(t, 1, s1.progress)
	assert.Equal(t, 1, s2.progress)

	require.NoError(t, m.Close())
	assert.True(t, s1.closed)
}

/*
TestNewMetricsSink covers the registry helpers.

	Cases:
	- no config -> NopSink
	- single config -> the sink itself
	- two configs -> MultiSink with two sub-sinks
	- unknown type -> error
*/
func TestNewMetricsSink(t *testing.T) {
	require.NoError(t, RegisterMetricsSink("test-record", func(map[string]any) (MetricsSink, error) {
		return &recordSink{}, nil
	}))
	assert.Error(t, RegisterMetricsSink("test-record", func(map[string]any) (MetricsSink, error) {
		return NopSink{}, nil
	}))

	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}})
	require.NoError(t, err)
	assert.IsType(t, &recordSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-record"}, {Type: "test-record"}})
	require.NoError(t, err)
	m, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, m.Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
}
