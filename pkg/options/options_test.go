package options

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/sensoragent/pkg/mqtt/topic"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{addr: ":9090"},
		{addr: "127.0.0.1:9090"},
		{addr: "[::1]:9090"},
		{addr: "localhost:9090"},
		{addr: "9090", wantErr: true},
		{addr: ":http-alt", wantErr: true},
		{addr: ":70000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestOptionGroups(t *testing.T) {
	tests := []struct {
		name string
		opts IOptions
	}{
		{name: "link defaults", opts: NewLinkOptions()},
		{name: "mqtt defaults", opts: NewMqttOptions()},
		{name: "sensor defaults", opts: NewSensorOptions()},
		{name: "schedule defaults", opts: NewScheduleOptions()},
		{name: "restart defaults", opts: NewRestartOptions()},
		{name: "metrics disabled", opts: NewMetricsOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errs := tt.opts.Validate(); len(errs) != 0 {
				t.Errorf("Validate() = %v, want no errors", errs)
			}
		})
	}
}

func TestLinkOptionsValidate(t *testing.T) {
	o := NewLinkOptions()
	o.Driver = LinkDriverNmcli
	if errs := o.Validate(); len(errs) != 2 {
		t.Errorf("nmcli without ssid and interface: got %d errors, want 2: %v", len(errs), errs)
	}

	o.SSID, o.Interface = "lab", "wlan0"
	o.MaxAttempts = 0
	o.AttemptInterval = 0
	if errs := o.Validate(); len(errs) != 2 {
		t.Errorf("zero budget: got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestMqttOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *MqttOptions)
	}{
		{name: "bad scheme", mutate: func(o *MqttOptions) { o.Broker = "ws://broker:80" }},
		{name: "bad protocol", mutate: func(o *MqttOptions) { o.Protocol = "v4" }},
		{name: "wildcard namespace", mutate: func(o *MqttOptions) { o.Namespace = "lab/#" }},
		{name: "qos", mutate: func(o *MqttOptions) { o.QoS = 3 }},
		{name: "backoff", mutate: func(o *MqttOptions) { o.ReconnectBackoff = 0 }},
		{name: "keep-alive", mutate: func(o *MqttOptions) { o.KeepAlive = time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewMqttOptions()
			tt.mutate(o)
			if errs := o.Validate(); len(errs) != 1 {
				t.Errorf("Validate() = %v, want exactly one error", errs)
			}
		})
	}
}

func TestMqttOptionsToClientConfig(t *testing.T) {
	o := NewMqttOptions()
	o.KeepAlive = 30 * time.Second

	cfg := o.ToClientConfig()
	if cfg.KeepAlive != 30 {
		t.Errorf("KeepAlive = %d, want 30", cfg.KeepAlive)
	}
	if cfg.WillTopic != "" {
		t.Errorf("WillTopic = %q, want none by default", cfg.WillTopic)
	}

	o.OfflineWill = true
	cfg = o.ToClientConfig()
	if cfg.WillTopic != topic.NewSet(o.Namespace).Status || string(cfg.WillPayload) != topic.StatusOffline || !cfg.WillRetain {
		t.Errorf("will = %q %q retain=%v, want retained offline on the status topic", cfg.WillTopic, cfg.WillPayload, cfg.WillRetain)
	}
}

func TestSensorOptionsValidate(t *testing.T) {
	o := NewSensorOptions()
	o.InvalidRate = 1.5
	if errs := o.Validate(); len(errs) != 1 {
		t.Errorf("Validate() = %v, want one error", errs)
	}

	o = NewSensorOptions()
	o.Driver = "thermocouple"
	if errs := o.Validate(); len(errs) != 1 {
		t.Errorf("Validate() = %v, want one error", errs)
	}
}

func TestAddFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	link, mqtt, sched := NewLinkOptions(), NewMqttOptions(), NewScheduleOptions()
	link.AddFlags(fs)
	mqtt.AddFlags(fs)
	sched.AddFlags(fs)
	NewSensorOptions().AddFlags(fs)
	NewRestartOptions().AddFlags(fs)
	NewMetricsOptions().AddFlags(fs)

	err := fs.Parse([]string{
		"--link.ssid=lab",
		"--link.recover-on-session-loss",
		"--mqtt.offline-will",
		"--mqtt.namespace=lab/room1",
		"--schedule.period=30s",
	})
	if err != nil {
		t.Fatal(err)
	}
	if link.SSID != "lab" || !link.RecoverOnSessionLoss {
		t.Errorf("link = %+v", link)
	}
	if !mqtt.OfflineWill || mqtt.Namespace != "lab/room1" {
		t.Errorf("mqtt = %+v", mqtt)
	}
	if sched.Period != 30*time.Second {
		t.Errorf("period = %v, want 30s", sched.Period)
	}
}
