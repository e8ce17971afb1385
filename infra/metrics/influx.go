package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/rcpspoc/core/metrics"
	"github.com/kilianp07/rcpspoc/infra/logger"
)

// InfluxSink writes solver runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes the run summary as a solver_run point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solver_run").
		AddTag("instance", ev.Instance).
		AddTag("status", ev.Status).
		AddTag("run_id", ev.RunID).
		AddField("makespan", ev.Makespan).
		AddField("overtime_cost", round3(ev.OvertimeCost)).
		AddField("nodes", ev.Nodes).
		AddField("bounded", ev.Bounded).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(stamp(ev.Time))
	if !math.IsInf(ev.Profit, 0) {
		p = p.AddField("profit", round3(ev.Profit))
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordProgress writes a search snapshot as a solver_progress point.
func (s *InfluxSink) RecordProgress(ev coremetrics.ProgressEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solver_progress").
		AddTag("instance", ev.Instance).
		AddTag("run_id", ev.RunID).
		AddField("nodes", ev.Nodes).
		AddField("bounded", ev.Bounded).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(stamp(ev.Time))
	if !math.IsInf(ev.Incumbent, 0) {
		p = p.AddField("incumbent", round3(ev.Incumbent))
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
