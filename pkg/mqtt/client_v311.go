package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	pahov3 "github.com/eclipse/paho.mqtt.golang"

	"github.com/autopeer-io/sensoragent/pkg/log"
)

// v311Client speaks MQTT 3.1.1 through paho.mqtt.golang. Auto-reconnect is
// disabled; sessions are opened only by Connect.
type v311Client struct {
	cfg    *ClientConfig
	broker *url.URL

	mc     pahov3.Client
	reason atomic.Int32

	inbound chan Message
}

func newV311Client(cfg *ClientConfig, broker *url.URL) *v311Client {
	pahov3.ERROR = newErrorLogger("paho.v311")
	pahov3.CRITICAL = newErrorLogger("paho.v311")
	if cfg.Debug {
		pahov3.WARN = newDebugLogger("paho.v311")
		pahov3.DEBUG = newDebugLogger("paho.v311")
	}

	return &v311Client{
		cfg:     cfg,
		broker:  broker,
		inbound: make(chan Message, cfg.InboundQueueSize),
	}
}

func (c *v311Client) Connect(ctx context.Context, clientID string) error {
	c.drop()

	opts := pahov3.NewClientOptions().
		AddBroker(c.brokerAddr()).
		SetClientID(clientID).
		SetProtocolVersion(4).
		SetKeepAlive(time.Duration(c.cfg.KeepAlive) * time.Second).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetCleanSession(c.cfg.CleanStart).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetOrderMatters(false).
		SetDefaultPublishHandler(c.enqueue).
		SetConnectionLostHandler(c.onConnectionLost)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
	}
	if c.cfg.Password != "" {
		opts.SetPassword(c.cfg.Password)
	}
	if isTLS(c.broker.Scheme) {
		opts.SetTLSConfig(&tls.Config{
			ServerName:         c.broker.Hostname(),
			InsecureSkipVerify: c.cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		})
	}
	if c.cfg.WillTopic != "" {
		opts.SetBinaryWill(c.cfg.WillTopic, c.cfg.WillPayload, c.cfg.WillQoS, c.cfg.WillRetain)
	}

	mc := pahov3.NewClient(opts)
	tok := mc.Connect()
	if err := waitToken(ctx, tok, c.cfg.ConnectTimeout); err != nil {
		c.reason.Store(ReasonConnectionTimeout)
		mc.Disconnect(0)
		return fmt.Errorf("mqtt handshake failed: %w", err)
	}
	if err := tok.Error(); err != nil {
		if ct, ok := tok.(*pahov3.ConnectToken); ok && ct.ReturnCode() != 0 {
			c.reason.Store(int32(ct.ReturnCode()))
		} else {
			c.reason.Store(ReasonConnectFailed)
		}
		return fmt.Errorf("mqtt handshake failed: %w", err)
	}

	c.mc = mc
	c.reason.Store(ReasonNone)
	return nil
}

func (c *v311Client) Disconnect(ctx context.Context) {
	if c.mc == nil {
		return
	}
	if c.mc.IsConnectionOpen() {
		c.mc.Disconnect(250)
		log.Info("MQTT Client disconnected")
	}
	c.reason.Store(ReasonDisconnected)
	c.mc = nil
}

func (c *v311Client) IsConnected() bool {
	return c.mc != nil && c.mc.IsConnectionOpen()
}

func (c *v311Client) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	tok := c.mc.Publish(topic, byte(qos), retain, payload)
	if err := waitToken(ctx, tok, c.cfg.ConnectTimeout); err != nil {
		return err
	}
	return tok.Error()
}

func (c *v311Client) Maintain(ctx context.Context) {
	if c.mc != nil && !c.mc.IsConnectionOpen() {
		c.mc = nil
	}
	drainInbound(ctx, c.inbound, c.cfg.OnMessage)
}

func (c *v311Client) DisconnectReason() int {
	return int(c.reason.Load())
}

func (c *v311Client) drop() {
	if c.mc == nil {
		return
	}
	if c.mc.IsConnectionOpen() {
		c.mc.Disconnect(0)
	}
	c.mc = nil
}

// brokerAddr returns the broker URL with the default port filled in.
func (c *v311Client) brokerAddr() string {
	if c.broker.Port() != "" {
		return c.broker.String()
	}
	port, _ := defaultPort(c.broker.Scheme) // Already validated
	u := *c.broker
	u.Host = c.broker.Hostname() + ":" + port
	return u.String()
}

func (c *v311Client) enqueue(_ pahov3.Client, m pahov3.Message) {
	enqueueInbound(c.inbound, Message{Topic: m.Topic(), Payload: m.Payload()})
}

func (c *v311Client) onConnectionLost(_ pahov3.Client, err error) {
	c.reason.Store(ReasonConnectionLost)
	log.Error(err, "MQTT Client connection lost")
}

// waitToken blocks until tok completes, ctx ends or timeout elapses.
func waitToken(ctx context.Context, tok pahov3.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	}
}
