package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/sensoragent/cmd/cpeer-sensor-agent/app/options"
	"github.com/autopeer-io/sensoragent/pkg/app"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

const (
	commandName = "cpeer-sensor-agent"
	commandDesc = `The sensor agent runs on a small device with a DHT11/DHT22 class sensor.
It associates the network once at boot, keeps an MQTT session alive and
publishes temperature and humidity readings on a fixed period, with a
retained online status on every new session.`
)

func NewApp() *app.App {
	opts := options.NewAgentOptions()
	application := app.NewApp(
		commandName,
		"Launch a telemetry sensor agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithEnvPrefix("CPEER"),
		app.WithWatchConfig(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.AgentOptions) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		log.Init(opts.Log)
		defer func() { _ = log.Sync() }()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
