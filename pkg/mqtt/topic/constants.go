package topic

// Topic segments published by a sensor agent under its namespace.
// These act as the contract with dashboards and subscribers; changing them
// breaks every consumer of the namespace.
const (
	// SuffixTemperature carries the temperature in degrees Celsius, two decimals.
	// Structure: {namespace}/temperatura
	SuffixTemperature = "temperatura"

	// SuffixHumidity carries the relative humidity in percent, two decimals.
	// Structure: {namespace}/umidade
	SuffixHumidity = "umidade"

	// SuffixStatus carries the retained liveness marker.
	// Structure: {namespace}/status
	SuffixStatus = "status"
)

// Payloads published on the status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Standard MQTT wildcard characters. They are not allowed in a namespace.
const (
	Wildcard      = "+"
	MultiWildcard = "#"
)
