package bus

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensoragent/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/sensoragent/internal/pkg/util/fsm"
	"github.com/autopeer-io/sensoragent/pkg/log"
	"github.com/autopeer-io/sensoragent/pkg/mqtt"
	"github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
)

// Config holds the session parameters.
type Config struct {
	// Broker is only used for logging.
	Broker         string
	ClientIDPrefix string
	Topics         topic.Set
	QoS            int
	Backoff        time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithBeforeReconnect registers a hook run before every connection attempt
// made by EnsureConnected. An error from the hook aborts EnsureConnected.
func WithBeforeReconnect(fn func(ctx context.Context) error) Option {
	return func(m *Manager) { m.beforeReconnect = fn }
}

// WithIdentityGenerator replaces NewClientID.
func WithIdentityGenerator(fn func(prefix string) string) Option {
	return func(m *Manager) { m.newID = fn }
}

// Manager owns the bus session. Apart from State, its methods must be
// called from a single goroutine.
type Manager struct {
	cfg    Config
	client mqtt.Client
	clock  clock.Clock

	newID           func(prefix string) string
	beforeReconnect func(ctx context.Context) error

	fsm *fsm.FSM
}

func NewManager(cfg Config, client mqtt.Client, clk clock.Clock, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		client: client,
		clock:  clk,
		newID:  NewClientID,
		fsm:    newStateMachine(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the last known session state. Safe for concurrent use.
func (m *Manager) State() State {
	return State(m.fsm.Current())
}

// Connected polls the transport and reports whether the session is live.
func (m *Manager) Connected() bool {
	if m.State() == StateConnected && !m.client.IsConnected() {
		log.Warn("MQTT connection lost", "rc", m.client.DisconnectReason())
		m.fire(context.Background(), EventDisconnected)
	}
	return m.State() == StateConnected
}

// EnsureConnected blocks until a session is established, retrying every
// Backoff. Only context cancellation ends it early.
func (m *Manager) EnsureConnected(ctx context.Context) error {
	for !m.Connected() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.beforeReconnect != nil {
			if err := m.beforeReconnect(ctx); err != nil {
				return err
			}
		}
		if m.TryConnect(ctx) {
			return nil
		}
		m.clock.Sleep(m.cfg.Backoff)
	}
	return nil
}

// TryConnect makes a single connection attempt with a fresh identity. On
// success it publishes the retained online status before returning.
func (m *Manager) TryConnect(ctx context.Context) bool {
	clientID := m.newID(m.cfg.ClientIDPrefix)
	log.Info("Connecting to MQTT broker", "broker", m.cfg.Broker, "clientID", clientID)

	if err := m.client.Connect(ctx, clientID); err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues("failed").Inc()
		log.Error(err, "MQTT connection failed, retrying",
			"rc", m.client.DisconnectReason(),
			"backoff", m.cfg.Backoff,
		)
		return false
	}

	metrics.ConnectAttemptsTotal.WithLabelValues("success").Inc()
	m.fire(ctx, EventConnected)
	log.Info("MQTT connected", "broker", m.cfg.Broker, "clientID", clientID)

	if !m.publish(ctx, m.cfg.Topics.Status, true, []byte(topic.StatusOnline)) {
		log.Warn("Failed to publish online status", "topic", m.cfg.Topics.Status)
	}

	log.Info("MQTT topics",
		"temperature", m.cfg.Topics.Temperature,
		"humidity", m.cfg.Topics.Humidity,
		"status", m.cfg.Topics.Status,
	)
	return true
}

// Maintain services inbound bookkeeping and detects a dropped session.
func (m *Manager) Maintain(ctx context.Context) {
	if m.State() != StateConnected {
		return
	}

	m.client.Maintain(ctx)
	m.Connected()
}

// Publish sends payload to topic at the configured QoS. A false result is
// not retried.
func (m *Manager) Publish(ctx context.Context, topic string, payload []byte) bool {
	return m.publish(ctx, topic, false, payload)
}

// Close ends the session.
func (m *Manager) Close(ctx context.Context) {
	m.client.Disconnect(ctx)
	m.fire(ctx, EventDisconnected)
}

func (m *Manager) publish(ctx context.Context, topic string, retain bool, payload []byte) bool {
	if m.State() != StateConnected {
		metrics.PublishTotal.WithLabelValues(topic, "failed").Inc()
		log.Warn("Session is down, dropping publish", "topic", topic)
		return false
	}

	start := m.clock.Now()
	err := m.client.Publish(ctx, topic, m.cfg.QoS, retain, payload)
	metrics.PublishLatency.WithLabelValues(topic).Observe(m.clock.Since(start).Seconds())
	if err != nil {
		metrics.PublishTotal.WithLabelValues(topic, "failed").Inc()
		log.Error(err, "Publish failed", "topic", topic)
		return false
	}

	metrics.PublishTotal.WithLabelValues(topic, "success").Inc()
	return true
}

func (m *Manager) fire(ctx context.Context, event string) {
	if err := m.fsm.Event(ctx, event); fsmutil.IsRealError(err) {
		log.Error(err, "Session state transition failed", "event", event, "state", m.State())
	}
}
