//go:build !linux

package hal

import (
	"errors"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
)

func newNmcliStation(iface string) (core.Station, error) {
	return nil, errors.New("nmcli station driver is only supported on linux")
}
