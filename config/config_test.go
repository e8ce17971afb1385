package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `solver:
  node_limit: 5000
  time_limit_seconds: 1.5
  fathoming: false
  tight_bound: true
overtime:
  zmax_ratio: 0.25
  kappa: 3
results:
  backend: "sqlite"
  path: "runs.db"
logging:
  level: "debug"
  format: "console"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  qos:
    result: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	opts := cfg.Solver.Options()
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"node_limit", opts.NodeLimit, int64(5000)},
		{"time_limit", opts.TimeLimit, 1500 * time.Millisecond},
		{"fathoming", opts.Fathoming, false},
		{"tight_bound", opts.TightBound, true},
		{"warm_start", opts.WarmStart, false},
		{"progress_interval", opts.ProgressInterval, int64(100000)},
		{"zmax_ratio", cfg.Overtime.Defaults().ZMaxRatio, 0.25},
		{"kappa", cfg.Overtime.Kappa, 3.0},
		{"results.backend", cfg.Results.Backend, "sqlite"},
		{"results.path", cfg.Results.Path, "runs.db"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "console"},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt", cfg.MQTT != nil, true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" || cfg.MQTT.ClientID != "cli" {
		t.Errorf("mqtt mismatch: %+v", cfg.MQTT)
	}
	if cfg.MQTT.Topic != "rcpspoc" {
		t.Errorf("expected default topic, got %q", cfg.MQTT.Topic)
	}
	if cfg.MQTT.QoS["result"] != 1 {
		t.Errorf("expected result qos 1, got %d", cfg.MQTT.QoS["result"])
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !cfg.Solver.Fathoming {
		t.Errorf("expected fathoming on by default")
	}
	if cfg.Overtime != DefaultOvertimeConfig() {
		t.Errorf("unexpected overtime defaults %+v", cfg.Overtime)
	}
	if cfg.Results.Backend != "jsonl" || cfg.Results.Path != "results.jsonl" {
		t.Errorf("unexpected results defaults %+v", cfg.Results)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
	if cfg.MQTT != nil {
		t.Errorf("expected no mqtt section")
	}
	if !reflect.DeepEqual(Default(), cfg) {
		t.Errorf("Load(\"\") differs from Default()")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"solver":{"node_limit":10}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_SOLVER__NODE_LIMIT", "250")
	t.Setenv("K_RESULTS__BACKEND", "rotating")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Solver.NodeLimit != 250 {
		t.Errorf("expected env node limit 250, got %d", cfg.Solver.NodeLimit)
	}
	if cfg.Results.Backend != "rotating" || cfg.Results.MaxSizeMB != 10 {
		t.Errorf("unexpected results config %+v", cfg.Results)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		return p
	}
	cases := map[string]string{
		"format":    write("config.toml", "solver = 1"),
		"missing":   filepath.Join(dir, "absent.yaml"),
		"backend":   write("backend.yaml", "results:\n  backend: \"csv\"\n"),
		"level":     write("level.yaml", "logging:\n  level: \"loud\"\n"),
		"negative":  write("negative.yaml", "solver:\n  node_limit: -1\n"),
		"overtime":  write("overtime.yaml", "overtime:\n  kappa: -2\n"),
		"no_broker": write("mqtt.yaml", "mqtt:\n  topic: \"x\"\n"),
	}
	for name, path := range cases {
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
