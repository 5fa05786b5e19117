package scheduler

import (
	"context"
	"strconv"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/sensor"
	"github.com/autopeer-io/sensoragent/pkg/log"
	"github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
)

// Bus is the part of the session manager the scheduler drives.
type Bus interface {
	Connected() bool
	EnsureConnected(ctx context.Context) error
	Maintain(ctx context.Context)
	Publish(ctx context.Context, topic string, payload []byte) bool
}

// Sensor produces one reading per call.
type Sensor interface {
	Read() sensor.Reading
}

// Config holds the loop timing.
type Config struct {
	Period time.Duration
	Idle   time.Duration
}

// Scheduler is the cooperative device loop: keep the session alive, then
// sample and publish once per period.
type Scheduler struct {
	cfg    Config
	bus    Bus
	sensor Sensor
	topics topic.Set
	clock  clock.Clock

	lastPublish time.Time
}

// New creates a scheduler. The first sample is taken one period after creation.
func New(cfg Config, bus Bus, s Sensor, topics topic.Set, clk clock.Clock) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		bus:         bus,
		sensor:      s,
		topics:      topics,
		clock:       clk,
		lastPublish: clk.Now(),
	}
}

// FormatValue renders a reading the way it is published: fixed point with
// two decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Tick runs one loop iteration. It blocks only while the session is being
// re-established, and returns an error only when ctx ends during that wait.
func (s *Scheduler) Tick(ctx context.Context) error {
	if !s.bus.Connected() {
		if err := s.bus.EnsureConnected(ctx); err != nil {
			return err
		}
	}
	s.bus.Maintain(ctx)

	now := s.clock.Now()
	if now.Sub(s.lastPublish) < s.cfg.Period {
		return nil
	}
	s.advance(now)

	log.Info("Reading sensor")
	r := s.sensor.Read()
	if !r.Valid {
		log.Warn("Failed to read sensor, skipping this period")
		return nil
	}
	log.Info("Sensor data collected", "temperature", r.Temperature, "humidity", r.Humidity)

	temperature := FormatValue(r.Temperature)
	if s.bus.Publish(ctx, s.topics.Temperature, []byte(temperature)) {
		log.Info("Temperature published", "topic", s.topics.Temperature, "value", temperature)
	} else {
		log.Warn("Failed to publish temperature", "topic", s.topics.Temperature)
	}

	humidity := FormatValue(r.Humidity)
	if s.bus.Publish(ctx, s.topics.Humidity, []byte(humidity)) {
		log.Info("Humidity published", "topic", s.topics.Humidity, "value", humidity)
	} else {
		log.Warn("Failed to publish humidity", "topic", s.topics.Humidity)
	}

	return nil
}

// Run drives Tick until ctx ends, pausing Idle between iterations. The first
// sample is taken one period after Run starts.
func (s *Scheduler) Run(ctx context.Context) error {
	s.lastPublish = s.clock.Now()
	log.Info("Device loop started", "period", s.cfg.Period)
	for {
		if err := s.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		s.clock.Sleep(s.cfg.Idle)
	}
}

// advance moves lastPublish forward by one period so samples do not drift.
// After a stall longer than a period it restarts from now instead of
// catching up with a burst.
func (s *Scheduler) advance(now time.Time) {
	s.lastPublish = s.lastPublish.Add(s.cfg.Period)
	if now.Sub(s.lastPublish) >= s.cfg.Period {
		s.lastPublish = now
	}
}
