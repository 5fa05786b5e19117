package sensoragent

import (
	"context"
	"fmt"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/bus"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/hal"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/link"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/scheduler"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/sensor"
	"github.com/autopeer-io/sensoragent/internal/sensoragent/server"
	"github.com/autopeer-io/sensoragent/pkg/log"
	"github.com/autopeer-io/sensoragent/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
	"github.com/autopeer-io/sensoragent/pkg/options"
)

// Config is the validated configuration of the agent.
type Config struct {
	LinkOptions     *options.LinkOptions
	MqttOptions     *options.MqttOptions
	SensorOptions   *options.SensorOptions
	ScheduleOptions *options.ScheduleOptions
	RestartOptions  *options.RestartOptions
	MetricsOptions  *options.MetricsOptions
}

// Devices are the hardware primitives the agent drives. NewAgent builds
// them from the configured drivers; tests pass fakes to NewAgentWith.
type Devices struct {
	Station   core.Station
	Sensor    core.Sensor
	Restarter core.Restarter
	Client    mqtt.Client
	Clock     clock.Clock
}

func (cfg *Config) NewAgent() (*Agent, error) {
	station, err := hal.NewStation(cfg.LinkOptions.Driver, cfg.LinkOptions.Interface)
	if err != nil {
		return nil, fmt.Errorf("failed to init station: %w", err)
	}

	restarter, err := hal.NewRestarter(cfg.RestartOptions.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to init restarter: %w", err)
	}

	sens, err := hal.NewSensor(hal.SensorConfig{
		Driver:          cfg.SensorOptions.Driver,
		IIORoot:         cfg.SensorOptions.IIORoot,
		Device:          cfg.SensorOptions.Device,
		BaseTemperature: cfg.SensorOptions.BaseTemperature,
		BaseHumidity:    cfg.SensorOptions.BaseHumidity,
		InvalidRate:     cfg.SensorOptions.InvalidRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init sensor: %w", err)
	}

	mqttConfig := cfg.MqttOptions.ToClientConfig()
	mqttConfig.OnMessage = func(_ context.Context, topic string, payload []byte) {
		log.Debug("Ignoring inbound message", "topic", topic, "size", len(payload))
	}
	client, err := mqtt.NewClient(mqttConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	return cfg.NewAgentWith(Devices{
		Station:   station,
		Sensor:    sens,
		Restarter: restarter,
		Client:    client,
		Clock:     clock.RealClock{},
	}), nil
}

// NewAgentWith wires the agent around the given devices.
func (cfg *Config) NewAgentWith(d Devices) *Agent {
	topics := mqtttopic.NewSet(cfg.MqttOptions.Namespace)

	linkManager := link.NewManager(link.Config{
		SSID:            cfg.LinkOptions.SSID,
		Credentials:     cfg.LinkOptions.Password,
		MaxAttempts:     cfg.LinkOptions.MaxAttempts,
		AttemptInterval: cfg.LinkOptions.AttemptInterval,
		RestartDelay:    cfg.RestartOptions.Delay,
	}, d.Station, d.Restarter, d.Clock)

	var busOpts []bus.Option
	if cfg.LinkOptions.RecoverOnSessionLoss {
		busOpts = append(busOpts, bus.WithBeforeReconnect(linkManager.Recover))
	}
	busManager := bus.NewManager(bus.Config{
		Broker:         cfg.MqttOptions.Broker,
		ClientIDPrefix: cfg.MqttOptions.ClientIDPrefix,
		Topics:         topics,
		QoS:            cfg.MqttOptions.QoS,
		Backoff:        cfg.MqttOptions.ReconnectBackoff,
	}, d.Client, d.Clock, busOpts...)

	port := sensor.NewPort(d.Sensor, cfg.SensorOptions.Warmup, d.Clock)

	sched := scheduler.New(scheduler.Config{
		Period: cfg.ScheduleOptions.Period,
		Idle:   cfg.ScheduleOptions.Idle,
	}, busManager, port, topics, d.Clock)

	a := &Agent{
		link:      linkManager,
		bus:       busManager,
		sensor:    port,
		scheduler: sched,
		topics:    topics,
		broker:    cfg.MqttOptions.Broker,
	}
	if cfg.MetricsOptions.Enabled() {
		a.server = server.NewServer(cfg.MetricsOptions, a.Ready)
	}
	return a
}
