package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensoragent/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/sensoragent/internal/pkg/util/fsm"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// ErrExhausted is returned by Establish when every attempt failed and the
// restarter returned instead of replacing the process.
var ErrExhausted = errors.New("network association attempts exhausted")

// Config holds the association parameters.
type Config struct {
	SSID        string
	Credentials string

	MaxAttempts     int
	AttemptInterval time.Duration
	RestartDelay    time.Duration
}

// Manager owns the network association lifecycle.
type Manager struct {
	cfg       Config
	station   core.Station
	restarter core.Restarter
	clock     clock.Clock

	fsm *fsm.FSM
}

func NewManager(cfg Config, station core.Station, restarter core.Restarter, clk clock.Clock) *Manager {
	return &Manager{
		cfg:       cfg,
		station:   station,
		restarter: restarter,
		clock:     clk,
		fsm:       newStateMachine(),
	}
}

// State returns the current association state. Safe for concurrent use.
func (m *Manager) State() State {
	return State(m.fsm.Current())
}

// Poll performs a single status check and returns the resulting state.
func (m *Manager) Poll(ctx context.Context) State {
	if m.station.Status() == core.StationConnected {
		m.fire(ctx, EventUp)
	} else if m.State() == StateConnected {
		m.fire(ctx, EventDown)
	}
	return m.State()
}

// Establish starts the association and polls it up to MaxAttempts times,
// AttemptInterval apart. When every poll fails it waits RestartDelay and
// restarts the device. It only returns ErrExhausted if the restarter
// returned without replacing the process.
func (m *Manager) Establish(ctx context.Context) (State, error) {
	log.Info("Connecting to WiFi", "ssid", m.cfg.SSID)

	m.fire(ctx, EventBegin)
	if err := m.station.Begin(m.cfg.SSID, m.cfg.Credentials); err != nil {
		log.Error(err, "Failed to start WiFi association", "ssid", m.cfg.SSID)
	}

	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return m.State(), err
		}

		if m.Poll(ctx) == StateConnected {
			log.Info("WiFi connected",
				"address", m.station.LocalAddress(),
				"signal", fmt.Sprintf("%d dBm", m.station.SignalStrength()),
				"attempts", attempt,
			)
			return StateConnected, nil
		}

		m.clock.Sleep(m.cfg.AttemptInterval)
	}

	m.fire(ctx, EventDown)
	log.Warn("Failed to connect to WiFi, check the network name and password",
		"ssid", m.cfg.SSID,
		"attempts", m.cfg.MaxAttempts,
		"budget", time.Duration(m.cfg.MaxAttempts)*m.cfg.AttemptInterval,
	)
	log.Warn("Restarting device", "delay", m.cfg.RestartDelay)
	m.clock.Sleep(m.cfg.RestartDelay)

	metrics.RestartsTotal.Inc()
	if err := m.restarter.Restart(); err != nil {
		return m.State(), fmt.Errorf("restart after failed association: %w", err)
	}
	return m.State(), ErrExhausted
}

// Recover re-runs Establish when the station no longer reports connected.
func (m *Manager) Recover(ctx context.Context) error {
	if m.Poll(ctx) == StateConnected {
		return nil
	}

	log.Warn("WiFi association lost, reconnecting", "ssid", m.cfg.SSID)
	_, err := m.Establish(ctx)
	return err
}

func (m *Manager) fire(ctx context.Context, event string) {
	if err := m.fsm.Event(ctx, event); fsmutil.IsRealError(err) {
		log.Error(err, "Link state transition failed", "event", event, "state", m.State())
	}
}
