package mqtt

import (
	"context"
	"errors"
)

// Reason codes returned by Client.DisconnectReason. Positive values are the
// reason (v5) or return (v3.1.1) code sent by the broker.
const (
	ReasonNone              = 0
	ReasonDisconnected      = -1
	ReasonConnectFailed     = -2
	ReasonConnectionLost    = -3
	ReasonConnectionTimeout = -4
)

// Supported protocol levels.
const (
	ProtocolV5   = "v5"
	ProtocolV311 = "v311"
)

// ErrNotConnected is returned by Publish when no session is open.
var ErrNotConnected = errors.New("mqtt client is not connected")

// MessageHandler defines the callback function for processing received MQTT messages.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Message is an inbound publish queued until the next Maintain call.
type Message struct {
	Topic   string
	Payload []byte
}

// Client is the bus primitive. Unlike a self-healing connection manager it
// never reconnects on its own: every session is opened by an explicit
// Connect call, so the caller decides the identity and the retry policy.
type Client interface {
	// Connect dials the broker and performs the session handshake using the
	// given client identifier. Any previous session is dropped first.
	Connect(ctx context.Context, clientID string) error

	// Disconnect cleanly closes the current session, if any.
	Disconnect(ctx context.Context)

	// IsConnected returns true while the session is open.
	IsConnected() bool

	// Publish sends a message to the specified topic.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Maintain services inbound bookkeeping. Queued inbound messages are
	// dispatched to the configured handler on the caller's goroutine.
	Maintain(ctx context.Context)

	// DisconnectReason returns the code describing the last connection
	// failure or loss. It is advisory and meant for logging.
	DisconnectReason() int
}
