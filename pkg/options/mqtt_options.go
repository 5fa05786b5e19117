package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/sensoragent/pkg/mqtt"
	"github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
)

var _ IOptions = (*MqttOptions)(nil)

// MqttOptions contains configuration for the MQTT session and topics.
type MqttOptions struct {
	Broker   string `json:"broker" mapstructure:"broker"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// ClientIDPrefix is prepended to the random part of every session identity.
	ClientIDPrefix string `json:"client-id-prefix" mapstructure:"client-id-prefix"`

	// Client behavior
	KeepAlive      time.Duration `json:"keep-alive" mapstructure:"keep-alive"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	CleanStart     bool          `json:"clean-start" mapstructure:"clean-start"`
	QoS            int           `json:"qos" mapstructure:"qos"`

	// ReconnectBackoff is the fixed wait between failed session attempts.
	ReconnectBackoff time.Duration `json:"reconnect-backoff" mapstructure:"reconnect-backoff"`

	// OfflineWill registers a retained "offline" will on the status topic.
	OfflineWill bool `json:"offline-will" mapstructure:"offline-will"`

	// InsecureSkipVerify controls whether a client verifies the server's certificate chain and host name.
	// This should be used only for testing.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`

	// Debug forwards the transport's internal logging at debug level.
	Debug bool `json:"debug" mapstructure:"debug"`

	// Namespace prefixes every topic: {Namespace}/temperatura and so on.
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// NewMqttOptions creates a new MqttOptions with default values.
func NewMqttOptions() *MqttOptions {
	return &MqttOptions{
		Broker:           "tcp://broker.hivemq.com:1883",
		Protocol:         mqtt.ProtocolV311,
		ClientIDPrefix:   "ESP8266",
		KeepAlive:        15 * time.Second,
		ConnectTimeout:   5 * time.Second,
		CleanStart:       true,
		QoS:              0,
		ReconnectBackoff: 5 * time.Second,
		Namespace:        "graduacao/iot/grupo_3",
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *MqttOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if err := o.ToClientConfig().Validate(); err != nil {
		errors = append(errors, err)
	}
	if err := topic.ValidateNamespace(o.Namespace); err != nil {
		errors = append(errors, err)
	}
	if o.QoS < 0 || o.QoS > 2 {
		errors = append(errors, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", o.QoS))
	}
	if o.ReconnectBackoff <= 0 {
		errors = append(errors, fmt.Errorf("mqtt reconnect backoff must be positive"))
	}
	if o.KeepAlive < time.Second || o.KeepAlive > 65535*time.Second {
		errors = append(errors, fmt.Errorf("mqtt keep-alive must be between 1s and 65535s"))
	}

	return errors
}

// AddFlags adds flags for MqttOptions to the specified FlagSet.
func (o *MqttOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Broker, "mqtt.broker", o.Broker, "The URL of the MQTT broker (tcp://, mqtt://, ssl://, tls:// or mqtts://).")
	fs.StringVar(&o.Protocol, "mqtt.protocol", o.Protocol, "MQTT protocol level: 'v311' or 'v5'.")
	fs.StringVar(&o.Username, "mqtt.username", o.Username, "The username for MQTT authentication.")
	fs.StringVar(&o.Password, "mqtt.password", o.Password, "The password for MQTT authentication.")
	fs.StringVar(&o.ClientIDPrefix, "mqtt.client-id-prefix", o.ClientIDPrefix, "Prefix of the client ID generated for every connection attempt.")

	fs.DurationVar(&o.KeepAlive, "mqtt.keep-alive", o.KeepAlive, "MQTT Keep Alive interval.")
	fs.DurationVar(&o.ConnectTimeout, "mqtt.connect-timeout", o.ConnectTimeout, "Timeout for establishing MQTT connection.")
	fs.BoolVar(&o.CleanStart, "mqtt.clean-start", o.CleanStart, "Start every session clean.")
	fs.IntVar(&o.QoS, "mqtt.qos", o.QoS, "QoS used for readings and the status message.")
	fs.DurationVar(&o.ReconnectBackoff, "mqtt.reconnect-backoff", o.ReconnectBackoff, "Fixed wait between failed connection attempts.")
	fs.BoolVar(&o.OfflineWill, "mqtt.offline-will", o.OfflineWill, "Register a retained 'offline' will message on the status topic.")
	fs.BoolVar(&o.InsecureSkipVerify, "mqtt.insecure-skip-verify", o.InsecureSkipVerify, "If true, skips the TLS certificate verification.")
	fs.BoolVar(&o.Debug, "mqtt.debug", o.Debug, "Log the MQTT transport's internal debug output.")

	// Topics
	fs.StringVar(&o.Namespace, "mqtt.namespace", o.Namespace, "Topic namespace for temperature, humidity and status topics.")
}

func (o *MqttOptions) ToClientConfig() *mqtt.ClientConfig {
	cfg := &mqtt.ClientConfig{
		BrokerURL:          o.Broker,
		Protocol:           o.Protocol,
		Username:           o.Username,
		Password:           o.Password,
		KeepAlive:          uint16(o.KeepAlive.Seconds()),
		ConnectTimeout:     o.ConnectTimeout,
		CleanStart:         o.CleanStart,
		InsecureSkipVerify: o.InsecureSkipVerify,
		Debug:              o.Debug,
	}

	if o.OfflineWill {
		cfg.WillTopic = topic.NewSet(o.Namespace).Status
		cfg.WillPayload = []byte(topic.StatusOffline)
		cfg.WillQoS = byte(o.QoS)
		cfg.WillRetain = true
	}

	return cfg
}
