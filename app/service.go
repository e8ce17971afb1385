package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/rcpspoc/config"
	"github.com/kilianp07/rcpspoc/core/bnb"
	coremetrics "github.com/kilianp07/rcpspoc/core/metrics"
	"github.com/kilianp07/rcpspoc/core/model"
	"github.com/kilianp07/rcpspoc/core/overtime"
	"github.com/kilianp07/rcpspoc/core/results"
	"github.com/kilianp07/rcpspoc/infra/logger"
	"github.com/kilianp07/rcpspoc/infra/metrics"
	"github.com/kilianp07/rcpspoc/infra/mqtt"
	"github.com/kilianp07/rcpspoc/infra/psplib"
	"github.com/kilianp07/rcpspoc/internal/eventbus"
	"github.com/kilianp07/rcpspoc/pkg/export"
)

// Service wires the solver to its metrics sinks, result store and event bus.
type Service struct {
	Solver *bnb.Solver

	cfg       *config.Config
	sink      coremetrics.MetricsSink
	store     results.Store
	bus       *eventbus.TypedBus[bnb.Event]
	collector *sync.WaitGroup
	stop      context.CancelFunc
	log       logger.Logger
}

// Run is one solved instance together with the model it was solved on.
type Run struct {
	Model  *overtime.Model
	Result bnb.Result
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Apply(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if cfg.MQTT != nil {
		pub, err := mqtt.NewPublisher(*cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		sink = coremetrics.NewMultiSink(sink, pub)
	}

	store, err := results.Open(cfg.Results)
	if err != nil {
		return nil, fmt.Errorf("results store: %w", err)
	}

	bus := eventbus.NewTyped[bnb.Event]()
	solver := bnb.New(cfg.Solver.Options(), logger.New("bnb"))
	solver.SetEventBus(bus)

	ctx, stop := context.WithCancel(context.Background())
	svc := &Service{
		Solver:    solver,
		cfg:       cfg,
		sink:      sink,
		store:     store,
		bus:       bus,
		collector: metrics.StartEventCollector(ctx, bus, sink),
		stop:      stop,
		log:       logg,
	}
	return svc, nil
}

// ServeMetrics exposes /metrics on metrics.prometheus_addr until ctx is
// canceled. It does nothing when no address is configured.
func (s *Service) ServeMetrics(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Store returns the result store.
func (s *Service) Store() results.Store { return s.store }

// LoadModel reads an instance file with the configured overtime defaults.
func (s *Service) LoadModel(path string) (*overtime.Model, error) {
	return LoadModel(path, s.cfg.Overtime.Defaults())
}

// LoadModel reads an instance file and attaches def when the instance has no
// overtime parameters. PSPLIB files are recognized by extension, everything
// else is decoded as JSON or YAML.
func LoadModel(path string, def overtime.Defaults) (*overtime.Model, error) {
	var (
		inst *model.Instance
		err  error
	)
	if psplib.IsInstanceFile(path) {
		inst, err = psplib.LoadFile(path)
	} else {
		inst, err = model.LoadInstance(path)
	}
	if err != nil {
		return nil, err
	}
	m, err := overtime.FromInstance(inst, def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Solve loads and solves the instance at path.
func (s *Service) Solve(ctx context.Context, path string) (Run, error) {
	m, err := s.LoadModel(path)
	if err != nil {
		return Run{}, err
	}
	res, err := s.SolveModel(ctx, m)
	return Run{Model: m, Result: res}, err
}

// SolveModel runs the solver on m, then records the run in the metrics
// sinks and the result store. Recording failures are logged, not returned.
func (s *Service) SolveModel(ctx context.Context, m *overtime.Model) (bnb.Result, error) {
	res, err := s.Solver.Solve(ctx, m)
	if err != nil {
		return res, err
	}
	now := time.Now()
	ev := coremetrics.SolveEvent{
		RunID:    res.RunID,
		Instance: res.Instance,
		Status:   res.Status.String(),
		Profit:   res.Profit,
		Nodes:    res.Nodes,
		Bounded:  res.Bounded,
		Duration: res.Duration,
		Time:     now,
	}
	rec := results.Record{
		RunID:      res.RunID,
		Timestamp:  now,
		Instance:   res.Instance,
		Status:     res.Status.String(),
		Nodes:      res.Nodes,
		Bounded:    res.Bounded,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Found() {
		ev.Makespan = res.Schedule.Makespan()
		ev.OvertimeCost = m.TotalCostsOf(res.Schedule)
		rec.Profit = res.Profit
		rec.Makespan = ev.Makespan
		rec.Overtime = ev.OvertimeCost
		rec.Schedule = append([]int(nil), res.Schedule...)
	}
	if err := s.sink.RecordSolve(ev); err != nil {
		s.log.Warnf("record metrics for %s: %v", res.Instance, err)
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Warnf("store result for %s: %v", res.Instance, err)
	}
	return res, nil
}

// InstanceFiles lists the instance files of dir in name order.
func InstanceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
		default:
			if !psplib.IsInstanceFile(path) {
				continue
			}
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Batch solves every instance file of dir with at most parallel searches
// running at once. Rows follow the file name order. The first load or
// solver error cancels the remaining searches.
func (s *Service) Batch(ctx context.Context, dir string, parallel int) ([]export.Row, error) {
	files, err := InstanceFiles(dir)
	if err != nil {
		return nil, err
	}
	if parallel < 1 {
		parallel = 1
	}
	s.log.Infof("batch: %d instances in %s, %d in parallel", len(files), dir, parallel)

	rows := make([]export.Row, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range files {
		g.Go(func() error {
			run, err := s.Solve(gctx, path)
			if err != nil {
				return err
			}
			rows[i] = export.Row{Instance: run.Result.Instance, Profit: run.Result.Profit}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Close stops the event collector and releases sinks and the store.
func (s *Service) Close() error {
	s.bus.Close()
	s.stop()
	s.collector.Wait()
	var err error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return multierr.Append(err, s.store.Close())
}
