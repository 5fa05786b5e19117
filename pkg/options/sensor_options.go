package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SensorOptions)(nil)

// Supported sensor drivers.
const (
	SensorDriverIIO       = "iio"
	SensorDriverSimulated = "simulated"
)

// SensorOptions configures the humidity and temperature sensor.
type SensorOptions struct {
	Driver string `json:"driver" mapstructure:"driver"`

	// IIORoot is where the kernel exposes industrial I/O devices.
	IIORoot string `json:"iio-root" mapstructure:"iio-root"`
	// Device is the IIO device directory name, e.g. 'iio:device0'. Empty
	// selects the first device whose name is dht11.
	Device string `json:"device" mapstructure:"device"`

	// Warmup is waited once after initialization before the first read.
	Warmup time.Duration `json:"warmup" mapstructure:"warmup"`

	// Simulated driver
	BaseTemperature float64 `json:"base-temperature" mapstructure:"base-temperature"`
	BaseHumidity    float64 `json:"base-humidity" mapstructure:"base-humidity"`
	InvalidRate     float64 `json:"invalid-rate" mapstructure:"invalid-rate"`
}

// NewSensorOptions creates a SensorOptions object with default parameters.
func NewSensorOptions() *SensorOptions {
	return &SensorOptions{
		Driver:          SensorDriverSimulated,
		IIORoot:         "/sys/bus/iio/devices",
		Warmup:          2 * time.Second,
		BaseTemperature: 24.0,
		BaseHumidity:    55.0,
		InvalidRate:     0.05,
	}
}

// Validate checks the sensor options.
func (o *SensorOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	switch o.Driver {
	case SensorDriverIIO:
		if o.IIORoot == "" {
			errors = append(errors, fmt.Errorf("--sensor.iio-root is required for the %s driver", o.Driver))
		}
	case SensorDriverSimulated:
		if o.InvalidRate < 0 || o.InvalidRate > 1 {
			errors = append(errors, fmt.Errorf("--sensor.invalid-rate must be within [0, 1]"))
		}
		if o.BaseHumidity < 0 || o.BaseHumidity > 100 {
			errors = append(errors, fmt.Errorf("--sensor.base-humidity must be within [0, 100]"))
		}
	default:
		errors = append(errors, fmt.Errorf("unsupported sensor driver %q", o.Driver))
	}

	if o.Warmup < 0 {
		errors = append(errors, fmt.Errorf("--sensor.warmup must not be negative"))
	}

	return errors
}

// AddFlags adds flags related to the sensor to the specified FlagSet.
func (o *SensorOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Driver, "sensor.driver", o.Driver, "Sensor driver: 'iio' or 'simulated'.")
	fs.StringVar(&o.IIORoot, "sensor.iio-root", o.IIORoot, "Directory holding the kernel IIO devices.")
	fs.StringVar(&o.Device, "sensor.device", o.Device, "IIO device name (e.g. 'iio:device0'). Empty picks the first dht11.")
	fs.DurationVar(&o.Warmup, "sensor.warmup", o.Warmup, "Wait after sensor initialization before the first read.")
	fs.Float64Var(&o.BaseTemperature, "sensor.base-temperature", o.BaseTemperature, "Mean temperature of the simulated sensor in Celsius.")
	fs.Float64Var(&o.BaseHumidity, "sensor.base-humidity", o.BaseHumidity, "Mean relative humidity of the simulated sensor.")
	fs.Float64Var(&o.InvalidRate, "sensor.invalid-rate", o.InvalidRate, "Fraction of simulated reads that fail.")
}
