package hal

import (
	"fmt"
	"time"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
)

// Sensor drivers.
const (
	SensorDriverIIO       = "iio"
	SensorDriverSimulated = "simulated"
)

// SensorConfig selects and parameterizes a sensor driver.
type SensorConfig struct {
	Driver string

	IIORoot string
	Device  string

	BaseTemperature float64
	BaseHumidity    float64
	InvalidRate     float64
}

// NewSensor returns the sensor driver described by cfg.
func NewSensor(cfg SensorConfig) (core.Sensor, error) {
	switch cfg.Driver {
	case SensorDriverIIO:
		return NewIIOSensor(cfg.IIORoot, cfg.Device), nil
	case SensorDriverSimulated:
		return NewSimulatedSensor(cfg.BaseTemperature, cfg.BaseHumidity, cfg.InvalidRate, time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown sensor driver %q", cfg.Driver)
	}
}
