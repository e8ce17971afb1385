package metrics

import "go.uber.org/multierr"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	var err error
	for _, s := range m.Sinks {
		err = multierr.Append(err, s.RecordSolve(ev))
	}
	return err
}

// RecordProgress forwards progress to the sinks that support it.
func (m *MultiSink) RecordProgress(ev ProgressEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(ProgressRecorder); ok {
			err = multierr.Append(err, rec.RecordProgress(ev))
		}
	}
	return err
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() error {
	var err error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
