// Package mqtt publishes solver summaries and search progress to an MQTT
// broker using Eclipse Paho.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremetrics "github.com/kilianp07/rcpspoc/core/metrics"
	"github.com/kilianp07/rcpspoc/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	// Topic prefixes every published topic, e.g. "rcpspoc".
	Topic      string          `json:"topic"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	// QoS per message kind: "result" and "progress".
	QoS        map[string]byte `json:"qos"`
	Retain     bool            `json:"retain"`
	LWTTopic   string          `json:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain"`
	MaxRetries int             `json:"max_retries"`
	BackoffMS  int             `json:"backoff_ms"`
	TLSConfig  *tls.Config     `json:"-"`
}

// SetDefaults fills the topic prefix and a random client id.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "rcpspoc"
	}
	if c.ClientID == "" {
		c.ClientID = "rcpspoc-" + uuid.NewString()[:8]
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher implements metrics.MetricsSink and metrics.ProgressRecorder by
// publishing JSON messages.
type Publisher struct {
	cli        pahoClient
	topic      string
	qos        map[string]byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
	mu         sync.Mutex
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{
		topic:      strings.TrimSuffix(cfg.Topic, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

type solveMessage struct {
	RunID        string   `json:"run_id"`
	Instance     string   `json:"instance"`
	Status       string   `json:"status"`
	Profit       *float64 `json:"profit"`
	Makespan     int      `json:"makespan"`
	OvertimeCost float64  `json:"overtime_cost"`
	Nodes        int64    `json:"nodes"`
	Bounded      int64    `json:"bounded"`
	DurationMS   int64    `json:"duration_ms"`
	Timestamp    int64    `json:"timestamp"`
}

type progressMessage struct {
	RunID     string   `json:"run_id"`
	Instance  string   `json:"instance"`
	Nodes     int64    `json:"nodes"`
	Bounded   int64    `json:"bounded"`
	Incumbent *float64 `json:"incumbent"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Timestamp int64    `json:"timestamp"`
}

// finite maps infinite profits, which JSON cannot carry, to null.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// RecordSolve publishes the run summary on <topic>/<instance>/result.
func (p *Publisher) RecordSolve(ev coremetrics.SolveEvent) error {
	msg := solveMessage{
		RunID:        ev.RunID,
		Instance:     ev.Instance,
		Status:       ev.Status,
		Profit:       finite(ev.Profit),
		Makespan:     ev.Makespan,
		OvertimeCost: ev.OvertimeCost,
		Nodes:        ev.Nodes,
		Bounded:      ev.Bounded,
		DurationMS:   ev.Duration.Milliseconds(),
		Timestamp:    stamp(ev.Time),
	}
	return p.publish(p.topicFor(ev.Instance, "result"), p.qosFor("result"), msg)
}

// RecordProgress publishes a search snapshot on <topic>/<instance>/progress.
func (p *Publisher) RecordProgress(ev coremetrics.ProgressEvent) error {
	msg := progressMessage{
		RunID:     ev.RunID,
		Instance:  ev.Instance,
		Nodes:     ev.Nodes,
		Bounded:   ev.Bounded,
		Incumbent: finite(ev.Incumbent),
		ElapsedMS: ev.Elapsed.Milliseconds(),
		Timestamp: stamp(ev.Time),
	}
	return p.publish(p.topicFor(ev.Instance, "progress"), p.qosFor("progress"), msg)
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}

func (p *Publisher) topicFor(instance, kind string) string {
	if instance == "" {
		instance = "unnamed"
	}
	return fmt.Sprintf("%s/%s/%s", p.topic, instance, kind)
}

func (p *Publisher) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

func (p *Publisher) publish(topic string, qos byte, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
