package core

// StationStatus is the association state reported by a Station.
type StationStatus int

const (
	StationIdle StationStatus = iota
	StationConnecting
	StationConnected
	StationFailed
)

func (s StationStatus) String() string {
	switch s {
	case StationIdle:
		return "Idle"
	case StationConnecting:
		return "Connecting"
	case StationConnected:
		return "Connected"
	case StationFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Station is the network association primitive.
type Station interface {
	// Begin starts associating with the given network. It does not wait for
	// the association to complete.
	Begin(ssid, credentials string) error

	// Status reports the current association state.
	Status() StationStatus

	// LocalAddress returns the station's IPv4 address, or "" when unknown.
	LocalAddress() string

	// SignalStrength returns the received signal level in dBm, or 0 when unknown.
	SignalStrength() int
}

// Sensor is the humidity and temperature sensor primitive. Failed reads
// return NaN.
type Sensor interface {
	Initialize() error
	ReadHumidity() float64
	ReadTemperature() float64
}

// Restarter restarts the device. On success Restart does not return.
type Restarter interface {
	Restart() error
}
