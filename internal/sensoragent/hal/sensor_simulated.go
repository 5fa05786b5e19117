package hal

import (
	"math"
	"math/rand"
	"sync"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// SimulatedSensor produces readings that drift around a target, and fails a
// configurable fraction of reads the way a real DHT does.
type SimulatedSensor struct {
	mu  sync.Mutex
	rnd *rand.Rand

	targetTemp     float64
	targetHumidity float64
	invalidRate    float64

	temperature float64
	humidity    float64
}

var _ core.Sensor = (*SimulatedSensor)(nil)

func NewSimulatedSensor(temperature, humidity, invalidRate float64, seed int64) *SimulatedSensor {
	return &SimulatedSensor{
		rnd:            rand.New(rand.NewSource(seed)),
		targetTemp:     temperature,
		targetHumidity: humidity,
		invalidRate:    invalidRate,
		temperature:    temperature,
		humidity:       humidity,
	}
}

func (s *SimulatedSensor) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.temperature = s.targetTemp
	s.humidity = s.targetHumidity
	log.Info("[HAL-Mock] Simulated sensor initialized", "temperature", s.targetTemp, "humidity", s.targetHumidity)
	return nil
}

func (s *SimulatedSensor) ReadHumidity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed() {
		return math.NaN()
	}

	// Move 5% of the way to target plus drift.
	diff := s.targetHumidity - s.humidity
	drift := (s.rnd.Float64() - 0.5) * 2.0
	s.humidity = math.Max(0, math.Min(100, s.humidity+diff*0.05+drift))
	return s.humidity
}

func (s *SimulatedSensor) ReadTemperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed() {
		return math.NaN()
	}

	// Move 10% of the way to target plus noise.
	diff := s.targetTemp - s.temperature
	noise := (s.rnd.Float64() - 0.5) * 0.5
	s.temperature += diff*0.1 + noise
	return s.temperature
}

func (s *SimulatedSensor) failed() bool {
	return s.invalidRate > 0 && s.rnd.Float64() < s.invalidRate
}
