package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cpeer_sensor"

// Registry holds every collector of the agent. It is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// LinkState records the network association state.
	// 0 = Disconnected, 1 = Connecting, 2 = Connected
	LinkState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_state",
			Help:      "Network association state (0=Disconnected, 1=Connecting, 2=Connected).",
		},
	)

	// SessionConnected records whether the bus session is live.
	SessionConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_connected",
			Help:      "The MQTT session state (1=Connected, 0=Disconnected).",
		},
	)

	// ConnectAttemptsTotal counts session handshakes.
	ConnectAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Total number of MQTT connection attempts.",
		},
		[]string{"result"}, // result: success/failed
	)

	// ReadingsTotal counts sensor reads.
	ReadingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Total number of sensor reads.",
		},
		[]string{"result"}, // result: valid/invalid
	)

	// LastReading holds the most recent valid value per quantity.
	LastReading = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_reading",
			Help:      "Most recent valid reading.",
		},
		[]string{"quantity"}, // quantity: temperature/humidity
	)

	// PublishTotal counts publishes per topic.
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of MQTT publishes.",
		},
		[]string{"topic", "status"}, // status: success/failed
	)

	// PublishLatency records how long a publish took to be accepted.
	PublishLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_latency_seconds",
			Help:      "Latency of MQTT publishes.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	// RestartsTotal counts self restarts requested after association exhaustion.
	RestartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restarts_total",
			Help:      "Total number of self restarts requested.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		LinkState,
		SessionConnected,
		ConnectAttemptsTotal,
		ReadingsTotal,
		LastReading,
		PublishTotal,
		PublishLatency,
		RestartsTotal,
	)
}
