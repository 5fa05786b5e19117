package sensor

import (
	"fmt"
	"math"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensoragent/internal/pkg/metrics"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// Reading is the result of one sensor read. Values of an invalid reading
// are meaningless.
type Reading struct {
	Humidity    float64
	Temperature float64
	Valid       bool
}

// Port wraps the sensor primitive.
type Port struct {
	sensor core.Sensor
	warmup time.Duration
	clock  clock.Clock
}

func NewPort(sensor core.Sensor, warmup time.Duration, clk clock.Clock) *Port {
	return &Port{sensor: sensor, warmup: warmup, clock: clk}
}

// Initialize prepares the sensor and waits for it to warm up.
func (p *Port) Initialize() error {
	log.Info("Initializing sensor")
	if err := p.sensor.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize sensor: %w", err)
	}

	p.clock.Sleep(p.warmup)
	log.Info("Sensor ready", "warmup", p.warmup)
	return nil
}

// Read makes a single read attempt, humidity first. Either value being NaN
// makes the reading invalid.
func (p *Port) Read() Reading {
	h := p.sensor.ReadHumidity()
	t := p.sensor.ReadTemperature()

	r := Reading{
		Humidity:    h,
		Temperature: t,
		Valid:       !math.IsNaN(h) && !math.IsNaN(t),
	}

	if !r.Valid {
		metrics.ReadingsTotal.WithLabelValues("invalid").Inc()
		return r
	}

	metrics.ReadingsTotal.WithLabelValues("valid").Inc()
	metrics.LastReading.WithLabelValues("temperature").Set(t)
	metrics.LastReading.WithLabelValues("humidity").Set(h)
	return r
}
