package hal

import (
	"fmt"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
)

// Station drivers.
const (
	StationDriverHost  = "host"
	StationDriverNmcli = "nmcli"
)

// NewStation returns the network association driver with the given name.
func NewStation(driver, iface string) (core.Station, error) {
	switch driver {
	case StationDriverHost:
		return NewHostStation(iface), nil
	case StationDriverNmcli:
		return newNmcliStation(iface)
	default:
		return nil, fmt.Errorf("unknown station driver %q", driver)
	}
}
