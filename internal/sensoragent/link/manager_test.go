package link

import (
	"context"
	"errors"
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
)

type fakeStation struct {
	// statuses are returned in order; the last one repeats.
	statuses []core.StationStatus
	polls    int
	begins   int
	beginErr error
}

func (s *fakeStation) Begin(ssid, credentials string) error {
	s.begins++
	return s.beginErr
}

func (s *fakeStation) Status() core.StationStatus {
	i := s.polls
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	s.polls++
	return s.statuses[i]
}

func (s *fakeStation) LocalAddress() string { return "192.168.1.20" }
func (s *fakeStation) SignalStrength() int  { return -56 }

type fakeRestarter struct {
	clock *testingclock.FakeClock
	calls int
	at    time.Time
	err   error
}

func (r *fakeRestarter) Restart() error {
	r.calls++
	r.at = r.clock.Now()
	return r.err
}

func defaultConfig() Config {
	return Config{
		SSID:            "lab",
		Credentials:     "secret",
		MaxAttempts:     40,
		AttemptInterval: 500 * time.Millisecond,
		RestartDelay:    5 * time.Second,
	}
}

func TestEstablishConnects(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := testingclock.NewFakeClock(start)
	station := &fakeStation{statuses: []core.StationStatus{
		core.StationIdle, core.StationConnecting, core.StationConnected,
	}}
	restarter := &fakeRestarter{clock: clk}

	m := NewManager(defaultConfig(), station, restarter, clk)
	state, err := m.Establish(context.Background())
	if err != nil {
		t.Fatalf("Establish() error = %v", err)
	}
	if state != StateConnected || m.State() != StateConnected {
		t.Errorf("state = %s, want %s", state, StateConnected)
	}
	if station.begins != 1 {
		t.Errorf("Begin called %d times, want 1", station.begins)
	}
	if station.polls != 3 {
		t.Errorf("Status polled %d times, want 3", station.polls)
	}
	if got := clk.Since(start); got != time.Second {
		t.Errorf("elapsed = %v, want 1s", got)
	}
	if restarter.calls != 0 {
		t.Errorf("Restart called %d times, want 0", restarter.calls)
	}
}

func TestEstablishExhaustedRestartsOnce(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := testingclock.NewFakeClock(start)
	station := &fakeStation{statuses: []core.StationStatus{core.StationConnecting}}
	restarter := &fakeRestarter{clock: clk}

	m := NewManager(defaultConfig(), station, restarter, clk)
	state, err := m.Establish(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Establish() error = %v, want %v", err, ErrExhausted)
	}
	if state != StateDisconnected {
		t.Errorf("state = %s, want %s", state, StateDisconnected)
	}
	if station.polls != 40 {
		t.Errorf("Status polled %d times, want 40", station.polls)
	}
	if restarter.calls != 1 {
		t.Fatalf("Restart called %d times, want exactly 1", restarter.calls)
	}
	if elapsed := restarter.at.Sub(start); elapsed < 20*time.Second {
		t.Errorf("restart after %v, must not happen before 20s", elapsed)
	}
	if elapsed := restarter.at.Sub(start); elapsed != 25*time.Second {
		t.Errorf("restart after %v, want 20s budget plus 5s delay", elapsed)
	}
}

func TestEstablishBeginFailureStillPolls(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	station := &fakeStation{
		statuses: []core.StationStatus{core.StationFailed},
		beginErr: errors.New("radio off"),
	}
	restarter := &fakeRestarter{clock: clk}

	cfg := defaultConfig()
	cfg.MaxAttempts = 3
	_, err := NewManager(cfg, station, restarter, clk).Establish(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Establish() error = %v, want %v", err, ErrExhausted)
	}
	if station.polls != 3 || restarter.calls != 1 {
		t.Errorf("polls = %d, restarts = %d, want 3 and 1", station.polls, restarter.calls)
	}
}

func TestEstablishRestartError(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	boom := errors.New("permission denied")
	restarter := &fakeRestarter{clock: clk, err: boom}

	cfg := defaultConfig()
	cfg.MaxAttempts = 1
	station := &fakeStation{statuses: []core.StationStatus{core.StationIdle}}
	_, err := NewManager(cfg, station, restarter, clk).Establish(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Establish() error = %v, want %v", err, boom)
	}
}

func TestEstablishCanceled(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	restarter := &fakeRestarter{clock: clk}
	station := &fakeStation{statuses: []core.StationStatus{core.StationConnecting}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewManager(defaultConfig(), station, restarter, clk).Establish(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Establish() error = %v, want %v", err, context.Canceled)
	}
	if restarter.calls != 0 {
		t.Errorf("Restart called %d times after cancellation", restarter.calls)
	}
}

func TestPollAndRecover(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	station := &fakeStation{statuses: []core.StationStatus{core.StationConnected}}
	restarter := &fakeRestarter{clock: clk}
	m := NewManager(defaultConfig(), station, restarter, clk)
	ctx := context.Background()

	if _, err := m.Establish(ctx); err != nil {
		t.Fatal(err)
	}

	// Still associated: Recover must not begin again.
	if err := m.Recover(ctx); err != nil {
		t.Fatal(err)
	}
	if station.begins != 1 {
		t.Errorf("Begin called %d times, want 1", station.begins)
	}

	// The access point disappears, then comes back after one poll.
	station.statuses = []core.StationStatus{core.StationIdle, core.StationConnecting, core.StationConnected}
	station.polls = 0
	if got := m.Poll(ctx); got != StateDisconnected {
		t.Fatalf("Poll() = %s, want %s", got, StateDisconnected)
	}
	station.polls = 0
	if err := m.Recover(ctx); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if station.begins != 2 {
		t.Errorf("Begin called %d times, want 2", station.begins)
	}
	if m.State() != StateConnected {
		t.Errorf("State() = %s, want %s", m.State(), StateConnected)
	}
}
