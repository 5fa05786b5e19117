//go:build linux

package hal

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// nmcliWaitSeconds bounds a single `nmcli device wifi connect` run. The
// association budget of the link manager is usually shorter.
const nmcliWaitSeconds = "30"

// NmcliStation associates a wireless interface through NetworkManager.
// Begin starts nmcli in the background; Status combines the outcome of that
// run with the address of the interface.
type NmcliStation struct {
	iface string
	host  *HostStation

	mu      sync.Mutex
	begun   bool
	running bool
	err     error

	command func(name string, args ...string) *exec.Cmd
}

var _ core.Station = (*NmcliStation)(nil)

func newNmcliStation(iface string) (core.Station, error) {
	if _, err := exec.LookPath("nmcli"); err != nil {
		return nil, fmt.Errorf("nmcli station driver: %w", err)
	}
	return &NmcliStation{
		iface:   iface,
		host:    NewHostStation(iface),
		command: exec.Command,
	}, nil
}

func (n *NmcliStation) Begin(ssid, credentials string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return nil
	}

	args := []string{"--wait", nmcliWaitSeconds, "device", "wifi", "connect", ssid}
	if credentials != "" {
		args = append(args, "password", credentials)
	}
	if n.iface != "" {
		args = append(args, "ifname", n.iface)
	}

	var stderr bytes.Buffer
	cmd := n.command("nmcli", args...)
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		n.err = err
		return fmt.Errorf("failed to start nmcli: %w", err)
	}

	n.begun, n.running, n.err = true, true, nil
	log.Info("[HAL-Nmcli] Association started", "ssid", ssid, "interface", n.iface)

	go func() {
		err := cmd.Wait()
		if err != nil {
			err = fmt.Errorf("nmcli: %w: %s", err, strings.TrimSpace(stderr.String()))
			log.Error(err, "[HAL-Nmcli] Association failed", "ssid", ssid)
		}

		n.mu.Lock()
		n.running, n.err = false, err
		n.mu.Unlock()
	}()

	return nil
}

func (n *NmcliStation) Status() core.StationStatus {
	n.mu.Lock()
	begun, running, err := n.begun, n.running, n.err
	n.mu.Unlock()

	switch {
	case running:
		return core.StationConnecting
	case err != nil:
		return core.StationFailed
	case n.host.LocalAddress() != "":
		return core.StationConnected
	case !begun:
		return core.StationIdle
	default:
		// nmcli finished, DHCP has not assigned an address yet.
		return core.StationConnecting
	}
}

func (n *NmcliStation) LocalAddress() string {
	return n.host.LocalAddress()
}

func (n *NmcliStation) SignalStrength() int {
	return wirelessLevel(n.iface)
}
