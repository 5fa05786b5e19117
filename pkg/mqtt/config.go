package mqtt

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ClientConfig holds the configuration for creating a new MQTT Client.
type ClientConfig struct {
	BrokerURL string
	Username  string
	Password  string

	// Protocol selects the transport: ProtocolV5 or ProtocolV311. Default is v5.
	Protocol string

	// KeepAlive in seconds. Default is 15.
	KeepAlive uint16

	// ConnectTimeout bounds dialing plus the CONNECT/CONNACK exchange. Default is 5s.
	ConnectTimeout time.Duration

	// CleanStart indicates whether to start a clean session.
	// Identities are ephemeral, so there is nothing to resume.
	CleanStart bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Will message published by the broker when the session drops uncleanly.
	WillTopic   string
	WillPayload []byte
	WillQoS     byte
	WillRetain  bool

	// InboundQueueSize caps messages buffered between Maintain calls. Default is 16.
	InboundQueueSize int

	// OnMessage receives inbound messages from Maintain. Optional.
	OnMessage MessageHandler

	// Debug routes the transport's internal debug output to the logger.
	Debug bool
}

// setDefaultConfig applies safe default values to the configuration.
func setDefaultConfig(cfg *ClientConfig) {
	if cfg.Protocol == "" {
		cfg.Protocol = ProtocolV5
	}

	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = 15
	}

	if cfg.InboundQueueSize <= 0 {
		cfg.InboundQueueSize = 16
	}
}

// Validate checks if the configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BrokerURL == "" {
		return errors.New("broker url is required")
	}
	u, err := url.Parse(c.BrokerURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("broker url %q has no host", c.BrokerURL)
	}
	if _, err := defaultPort(u.Scheme); err != nil {
		return err
	}
	if c.Protocol != ProtocolV5 && c.Protocol != ProtocolV311 {
		return fmt.Errorf("unsupported mqtt protocol %q", c.Protocol)
	}
	return nil
}

// defaultPort maps a broker URL scheme to its well-known port.
func defaultPort(scheme string) (string, error) {
	switch scheme {
	case "tcp", "mqtt":
		return "1883", nil
	case "ssl", "tls", "mqtts":
		return "8883", nil
	default:
		return "", fmt.Errorf("unsupported broker url scheme %q", scheme)
	}
}

func isTLS(scheme string) bool {
	return scheme == "ssl" || scheme == "tls" || scheme == "mqtts"
}
