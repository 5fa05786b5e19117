package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync/atomic"

	"github.com/eclipse/paho.golang/paho"

	"github.com/autopeer-io/sensoragent/pkg/log"
)

type pahoClient struct {
	cfg    *ClientConfig
	broker *url.URL

	pc        *paho.Client
	connected atomic.Bool
	reason    atomic.Int32

	inbound chan Message
}

// NewClient creates a new MQTT client implementing the Client interface.
// The transport is picked from cfg.Protocol.
func NewClient(cfg *ClientConfig) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mqtt config is required")
	}

	setDefaultConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mqtt config: %w", err)
	}

	brokerURL, _ := url.Parse(cfg.BrokerURL) // Already validated

	if cfg.Protocol == ProtocolV311 {
		return newV311Client(cfg, brokerURL), nil
	}

	return &pahoClient{
		cfg:     cfg,
		broker:  brokerURL,
		inbound: make(chan Message, cfg.InboundQueueSize),
	}, nil
}

func (c *pahoClient) Connect(ctx context.Context, clientID string) error {
	c.drop()

	connCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	conn, err := dialBroker(connCtx, c.broker, c.cfg.InsecureSkipVerify)
	if err != nil {
		c.reason.Store(failureReason(connCtx))
		return fmt.Errorf("failed to dial broker %s: %w", c.broker.Host, err)
	}

	pc := paho.NewClient(paho.ClientConfig{
		ClientID: clientID,
		Conn:     conn,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			c.enqueue,
		},
		OnClientError:      c.onClientError,
		OnServerDisconnect: c.onServerDisconnect,
	})
	pc.SetErrorLogger(newErrorLogger("paho"))
	if c.cfg.Debug {
		pc.SetDebugLogger(newDebugLogger("paho"))
	}

	cp := &paho.Connect{
		ClientID:   clientID,
		KeepAlive:  c.cfg.KeepAlive,
		CleanStart: c.cfg.CleanStart,
	}
	if c.cfg.Username != "" {
		cp.Username = c.cfg.Username
		cp.UsernameFlag = true
	}
	if c.cfg.Password != "" {
		cp.Password = []byte(c.cfg.Password)
		cp.PasswordFlag = true
	}
	if c.cfg.WillTopic != "" {
		cp.WillMessage = &paho.WillMessage{
			Topic:   c.cfg.WillTopic,
			Payload: c.cfg.WillPayload,
			QoS:     c.cfg.WillQoS,
			Retain:  c.cfg.WillRetain,
		}
	}

	ca, err := pc.Connect(connCtx, cp)
	if err != nil {
		if ca != nil && ca.ReasonCode != 0 {
			c.reason.Store(int32(ca.ReasonCode))
		} else {
			c.reason.Store(failureReason(connCtx))
		}
		_ = conn.Close()
		return fmt.Errorf("mqtt handshake failed: %w", err)
	}

	c.pc = pc
	c.reason.Store(ReasonNone)
	c.connected.Store(true)
	return nil
}

func (c *pahoClient) Disconnect(ctx context.Context) {
	if c.pc == nil {
		return
	}
	if c.connected.Load() {
		_ = c.pc.Disconnect(&paho.Disconnect{ReasonCode: 0})
		log.Info("MQTT Client disconnected")
	}
	c.connected.Store(false)
	c.reason.Store(ReasonDisconnected)
	c.pc = nil
}

func (c *pahoClient) IsConnected() bool {
	return c.pc != nil && c.connected.Load()
}

func (c *pahoClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	pr, err := c.pc.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     byte(qos),
		Retain:  retain,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	// 16 = accepted, but there are no matching subscribers.
	if pr != nil && pr.ReasonCode != 0 && pr.ReasonCode != 16 {
		return fmt.Errorf("publish rejected with reason code %d", pr.ReasonCode)
	}
	return nil
}

func (c *pahoClient) Maintain(ctx context.Context) {
	if c.pc != nil && !c.connected.Load() {
		// The read loop reported the loss; release the dead client.
		c.pc = nil
	}
	drainInbound(ctx, c.inbound, c.cfg.OnMessage)
}

func (c *pahoClient) DisconnectReason() int {
	return int(c.reason.Load())
}

// drop discards a stale client before a new handshake.
func (c *pahoClient) drop() {
	if c.pc == nil {
		return
	}
	if c.connected.Load() {
		_ = c.pc.Disconnect(&paho.Disconnect{ReasonCode: 0})
	}
	c.connected.Store(false)
	c.pc = nil
}

// --- Internal Callbacks ---

func (c *pahoClient) enqueue(p paho.PublishReceived) (bool, error) {
	enqueueInbound(c.inbound, Message{Topic: p.Packet.Topic, Payload: p.Packet.Payload})
	return true, nil
}

func (c *pahoClient) onClientError(err error) {
	c.connected.Store(false)
	c.reason.Store(ReasonConnectionLost)
	log.Error(err, "MQTT Client connection lost")
}

func (c *pahoClient) onServerDisconnect(d *paho.Disconnect) {
	c.connected.Store(false)
	c.reason.Store(int32(d.ReasonCode))
	if d.Properties != nil {
		log.Warn("MQTT Server requested disconnect", "reasonCode", d.ReasonCode, "reason", d.Properties.ReasonString)
	} else {
		log.Warn("MQTT Server requested disconnect", "reasonCode", d.ReasonCode)
	}
}

// --- Helpers shared by both transports ---

func dialBroker(ctx context.Context, u *url.URL, insecure bool) (net.Conn, error) {
	host := u.Host
	if u.Port() == "" {
		port, err := defaultPort(u.Scheme)
		if err != nil {
			return nil, err
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	if isTLS(u.Scheme) {
		d := &tls.Dialer{Config: &tls.Config{
			ServerName:         u.Hostname(),
			InsecureSkipVerify: insecure,
			MinVersion:         tls.VersionTLS12,
		}}
		return d.DialContext(ctx, "tcp", host)
	}

	var d net.Dialer
	return d.DialContext(ctx, "tcp", host)
}

func failureReason(ctx context.Context) int32 {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonConnectionTimeout
	}
	return ReasonConnectFailed
}

func enqueueInbound(ch chan Message, m Message) {
	select {
	case ch <- m:
	default:
		log.Warn("Inbound queue full, dropping message", "topic", m.Topic)
	}
}

func drainInbound(ctx context.Context, ch chan Message, handler MessageHandler) {
	for {
		select {
		case m := <-ch:
			if handler == nil {
				log.Debug("Received message on unhandled topic", "topic", m.Topic)
				continue
			}
			handler(ctx, m.Topic, m.Payload)
		default:
			return
		}
	}
}
