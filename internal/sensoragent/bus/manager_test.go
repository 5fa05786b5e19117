package bus

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/sensoragent/pkg/mqtt"
	"github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
)

type publishCall struct {
	topic   string
	qos     int
	retain  bool
	payload string
}

type fakeClient struct {
	// connectErrs holds the result of each Connect call; later calls succeed.
	connectErrs []error
	ids         []string
	connected   bool
	reason      int
	maintained  int
	publishes   []publishCall
	publishErr  map[string]error
	disconnects int
}

var _ mqtt.Client = (*fakeClient)(nil)

func (c *fakeClient) Connect(ctx context.Context, clientID string) error {
	n := len(c.ids)
	c.ids = append(c.ids, clientID)
	if n < len(c.connectErrs) && c.connectErrs[n] != nil {
		c.reason = mqtt.ReasonConnectFailed
		return c.connectErrs[n]
	}
	c.connected = true
	c.reason = mqtt.ReasonNone
	return nil
}

func (c *fakeClient) Disconnect(ctx context.Context) {
	c.disconnects++
	c.connected = false
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if !c.connected {
		return mqtt.ErrNotConnected
	}
	c.publishes = append(c.publishes, publishCall{topic: topic, qos: qos, retain: retain, payload: string(payload)})
	return c.publishErr[topic]
}

func (c *fakeClient) Maintain(ctx context.Context) { c.maintained++ }

func (c *fakeClient) DisconnectReason() int { return c.reason }

func (c *fakeClient) statusPublishes(status string) []publishCall {
	var out []publishCall
	for _, p := range c.publishes {
		if p.topic == status {
			out = append(out, p)
		}
	}
	return out
}

var testTopics = topic.NewSet("graduacao/iot/grupo_3")

func newTestManager(client *fakeClient, clk *testingclock.FakeClock, opts ...Option) *Manager {
	cfg := Config{
		Broker:         "tcp://broker.example:1883",
		ClientIDPrefix: "ESP8266",
		Topics:         testTopics,
		QoS:            0,
		Backoff:        5 * time.Second,
	}
	return NewManager(cfg, client, clk, opts...)
}

func TestNewClientID(t *testing.T) {
	re := regexp.MustCompile(`^ESP8266-[0-9a-f]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewClientID("ESP8266")
		if !re.MatchString(id) {
			t.Fatalf("NewClientID() = %q, does not match %s", id, re)
		}
		seen[id] = true
	}
	if len(seen) < 49 {
		t.Errorf("only %d distinct identities out of 50", len(seen))
	}
}

func TestTryConnectPublishesRetainedOnline(t *testing.T) {
	client := &fakeClient{}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))

	if !m.TryConnect(context.Background()) {
		t.Fatal("TryConnect() = false, want true")
	}
	if !m.Connected() {
		t.Error("Connected() = false after a successful attempt")
	}

	want := publishCall{topic: testTopics.Status, qos: 0, retain: true, payload: "online"}
	if len(client.publishes) != 1 || client.publishes[0] != want {
		t.Fatalf("publishes = %+v, want exactly %+v", client.publishes, want)
	}
}

func TestTryConnectFailure(t *testing.T) {
	client := &fakeClient{connectErrs: []error{errors.New("connection refused")}}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))

	if m.TryConnect(context.Background()) {
		t.Fatal("TryConnect() = true, want false")
	}
	if m.State() != StateDisconnected {
		t.Errorf("State() = %s, want %s", m.State(), StateDisconnected)
	}
	if len(client.publishes) != 0 {
		t.Errorf("publishes = %+v, want none", client.publishes)
	}
}

func TestEnsureConnectedRetriesWithBackoff(t *testing.T) {
	refused := errors.New("connection refused")
	client := &fakeClient{connectErrs: []error{refused, refused, refused}}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := testingclock.NewFakeClock(start)
	m := newTestManager(client, clk)

	if err := m.EnsureConnected(context.Background()); err != nil {
		t.Fatalf("EnsureConnected() error = %v", err)
	}

	if len(client.ids) != 4 {
		t.Fatalf("Connect called %d times, want 4", len(client.ids))
	}
	if got := clk.Since(start); got != 15*time.Second {
		t.Errorf("elapsed = %v, want 3 backoffs of 5s", got)
	}

	seen := map[string]bool{}
	for _, id := range client.ids {
		if seen[id] {
			t.Errorf("identity %q reused across attempts", id)
		}
		seen[id] = true
	}

	if got := client.statusPublishes(testTopics.Status); len(got) != 1 {
		t.Errorf("status published %d times, want 1", len(got))
	}
}

func TestNoStatusWhileContinuouslyConnected(t *testing.T) {
	client := &fakeClient{}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))
	ctx := context.Background()

	if err := m.EnsureConnected(ctx); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := m.EnsureConnected(ctx); err != nil {
			t.Fatal(err)
		}
		m.Maintain(ctx)
	}

	if len(client.ids) != 1 {
		t.Errorf("Connect called %d times, want 1", len(client.ids))
	}
	if client.maintained != 10 {
		t.Errorf("Maintain forwarded %d times, want 10", client.maintained)
	}
	if got := client.statusPublishes(testTopics.Status); len(got) != 1 {
		t.Errorf("status published %d times, want 1", len(got))
	}
}

func TestMaintainDetectsLossAndReconnects(t *testing.T) {
	client := &fakeClient{}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))
	ctx := context.Background()

	if !m.TryConnect(ctx) {
		t.Fatal("TryConnect() = false")
	}

	client.connected = false
	client.reason = mqtt.ReasonConnectionLost
	m.Maintain(ctx)
	if m.State() != StateDisconnected {
		t.Fatalf("State() = %s after loss, want %s", m.State(), StateDisconnected)
	}

	published := len(client.publishes)
	if m.Publish(ctx, testTopics.Temperature, []byte("24.70")) {
		t.Error("Publish() = true while disconnected")
	}
	if len(client.publishes) != published {
		t.Error("transport Publish was called while disconnected")
	}

	if err := m.EnsureConnected(ctx); err != nil {
		t.Fatal(err)
	}
	if got := client.statusPublishes(testTopics.Status); len(got) != 2 {
		t.Errorf("status published %d times, want one per session", len(got))
	}
}

func TestPublishFailureIsNonFatal(t *testing.T) {
	client := &fakeClient{publishErr: map[string]error{testTopics.Temperature: errors.New("rejected")}}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))
	ctx := context.Background()

	if !m.TryConnect(ctx) {
		t.Fatal("TryConnect() = false")
	}
	if m.Publish(ctx, testTopics.Temperature, []byte("24.70")) {
		t.Error("Publish() = true for a rejected publish")
	}
	if !m.Publish(ctx, testTopics.Humidity, []byte("55.30")) {
		t.Error("Publish() = false for an accepted publish")
	}
	if !m.Connected() {
		t.Error("a rejected publish must not drop the session")
	}

	last := client.publishes[len(client.publishes)-1]
	if last.retain || last.qos != 0 {
		t.Errorf("reading published with retain=%v qos=%d, want retain=false qos=0", last.retain, last.qos)
	}
}

func TestEnsureConnectedCanceled(t *testing.T) {
	client := &fakeClient{connectErrs: []error{errors.New("refused")}}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.EnsureConnected(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("EnsureConnected() error = %v, want %v", err, context.Canceled)
	}
	if len(client.ids) != 0 {
		t.Errorf("Connect called %d times after cancellation", len(client.ids))
	}
}

func TestBeforeReconnectHook(t *testing.T) {
	var calls int
	client := &fakeClient{connectErrs: []error{errors.New("refused")}}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()),
		WithBeforeReconnect(func(ctx context.Context) error {
			calls++
			return nil
		}),
		WithIdentityGenerator(func(prefix string) string { return prefix + "-fixed" }),
	)

	if err := m.EnsureConnected(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("hook called %d times, want once per attempt", calls)
	}
	if client.ids[0] != "ESP8266-fixed" {
		t.Errorf("identity = %q, want ESP8266-fixed", client.ids[0])
	}

	lost := errors.New("link exhausted")
	failing := newTestManager(&fakeClient{}, testingclock.NewFakeClock(time.Now()),
		WithBeforeReconnect(func(ctx context.Context) error { return lost }),
	)
	if err := failing.EnsureConnected(context.Background()); !errors.Is(err, lost) {
		t.Errorf("EnsureConnected() error = %v, want %v", err, lost)
	}
}

func TestClose(t *testing.T) {
	client := &fakeClient{}
	m := newTestManager(client, testingclock.NewFakeClock(time.Now()))
	ctx := context.Background()

	m.TryConnect(ctx)
	m.Close(ctx)
	if client.disconnects != 1 || m.State() != StateDisconnected {
		t.Errorf("disconnects = %d, state = %s", client.disconnects, m.State())
	}
}
