package options

import (
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/sensoragent/internal/sensoragent"
	"github.com/autopeer-io/sensoragent/pkg/app"
	"github.com/autopeer-io/sensoragent/pkg/log"
	"github.com/autopeer-io/sensoragent/pkg/options"
)

const defaultWirelessInterface = "wlan0"

type AgentOptions struct {
	LinkOptions     *options.LinkOptions     `json:"link" mapstructure:"link"`
	MqttOptions     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	SensorOptions   *options.SensorOptions   `json:"sensor" mapstructure:"sensor"`
	ScheduleOptions *options.ScheduleOptions `json:"schedule" mapstructure:"schedule"`
	RestartOptions  *options.RestartOptions  `json:"restart" mapstructure:"restart"`
	MetricsOptions  *options.MetricsOptions  `json:"metrics" mapstructure:"metrics"`
	Log             *log.Options             `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*AgentOptions)(nil)

func NewAgentOptions() *AgentOptions {
	o := &AgentOptions{
		LinkOptions:     options.NewLinkOptions(),
		MqttOptions:     options.NewMqttOptions(),
		SensorOptions:   options.NewSensorOptions(),
		ScheduleOptions: options.NewScheduleOptions(),
		RestartOptions:  options.NewRestartOptions(),
		MetricsOptions:  options.NewMetricsOptions(),
		Log:             log.NewOptions(),
	}

	return o
}

func (o *AgentOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.LinkOptions.AddFlags(fss.FlagSet("link"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.SensorOptions.AddFlags(fss.FlagSet("sensor"))
	o.ScheduleOptions.AddFlags(fss.FlagSet("schedule"))
	o.RestartOptions.AddFlags(fss.FlagSet("restart"))
	o.MetricsOptions.AddFlags(fss.FlagSet("metrics"))
	o.Log.AddFlags(fss.FlagSet("Log"))
	return fss
}

func (o *AgentOptions) Complete() error {
	o.MqttOptions.Namespace = strings.Trim(o.MqttOptions.Namespace, "/")

	if o.LinkOptions.Driver == options.LinkDriverNmcli && o.LinkOptions.Interface == "" {
		o.LinkOptions.Interface = defaultWirelessInterface
	}
	return nil
}

func (o *AgentOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.LinkOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.SensorOptions.Validate()...)
	errs = append(errs, o.ScheduleOptions.Validate()...)
	errs = append(errs, o.RestartOptions.Validate()...)
	errs = append(errs, o.MetricsOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *AgentOptions) Config() (*sensoragent.Config, error) {
	return &sensoragent.Config{
		LinkOptions:     o.LinkOptions,
		MqttOptions:     o.MqttOptions,
		SensorOptions:   o.SensorOptions,
		ScheduleOptions: o.ScheduleOptions,
		RestartOptions:  o.RestartOptions,
		MetricsOptions:  o.MetricsOptions,
	}, nil
}
