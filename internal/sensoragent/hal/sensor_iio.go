package hal

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

const (
	iioDriverName        = "dht11"
	iioHumidityAttr      = "in_humidityrelative_input"
	iioTemperatureAttr   = "in_temp_input"
	iioDeviceGlobPattern = "iio:device*"
)

// IIOSensor reads a DHT11/DHT22 through the kernel dht11 IIO driver. Values
// are exposed in milli-units: milli-percent and milli-degrees Celsius.
type IIOSensor struct {
	root   string
	device string
	dir    string
}

var _ core.Sensor = (*IIOSensor)(nil)

// NewIIOSensor creates a sensor for device under root. An empty device
// selects the first device named dht11.
func NewIIOSensor(root, device string) *IIOSensor {
	return &IIOSensor{root: root, device: device}
}

func (s *IIOSensor) Initialize() error {
	if s.device != "" {
		dir := filepath.Join(s.root, s.device)
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("iio device %s: %w", s.device, err)
		}
		s.dir = dir
		log.Info("[HAL-IIO] Sensor initialized", "device", dir)
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(s.root, iioDeviceGlobPattern))
	if err != nil {
		return err
	}
	for _, m := range matches {
		name, err := os.ReadFile(filepath.Join(m, "name"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(name)) == iioDriverName {
			s.dir = m
			log.Info("[HAL-IIO] Sensor initialized", "device", m)
			return nil
		}
	}

	return fmt.Errorf("no %s device found under %s", iioDriverName, s.root)
}

func (s *IIOSensor) ReadHumidity() float64 {
	return s.readMilli(iioHumidityAttr)
}

func (s *IIOSensor) ReadTemperature() float64 {
	return s.readMilli(iioTemperatureAttr)
}

// readMilli returns NaN on any failure. The driver answers EIO when the
// sensor does not respond, which is common for this sensor class.
func (s *IIOSensor) readMilli(attr string) float64 {
	if s.dir == "" {
		return math.NaN()
	}

	data, err := os.ReadFile(filepath.Join(s.dir, attr))
	if err != nil {
		log.Debug("[HAL-IIO] Read failed", "attr", attr, "err", err)
		return math.NaN()
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		log.Debug("[HAL-IIO] Unexpected value", "attr", attr, "value", string(data))
		return math.NaN()
	}
	return float64(v) / 1000
}
