package hal

import (
	"net"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// HostStation reports the association of a host whose network is managed
// outside the agent. Begin does nothing; the station is connected as soon
// as the interface has a non-loopback IPv4 address.
type HostStation struct {
	iface string

	// interfaces is replaced in tests.
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

var _ core.Station = (*HostStation)(nil)

// NewHostStation creates a station bound to iface. An empty iface accepts any interface.
func NewHostStation(iface string) *HostStation {
	return &HostStation{
		iface:      iface,
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

func (h *HostStation) Begin(ssid, credentials string) error {
	log.Info("[HAL-Host] Network is managed by the host, waiting for an address", "interface", h.iface)
	return nil
}

func (h *HostStation) Status() core.StationStatus {
	if h.LocalAddress() != "" {
		return core.StationConnected
	}
	return core.StationConnecting
}

func (h *HostStation) LocalAddress() string {
	ifaces, err := h.interfaces()
	if err != nil {
		log.Error(err, "[HAL-Host] Failed to list network interfaces")
		return ""
	}

	for _, i := range ifaces {
		if h.iface != "" && i.Name != h.iface {
			continue
		}
		if i.Flags&net.FlagUp == 0 || i.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ip := firstIPv4(h.addrs(i)); ip != "" {
			return ip
		}
	}
	return ""
}

func (h *HostStation) SignalStrength() int {
	return wirelessLevel(h.iface)
}

func firstIPv4(addrs []net.Addr, err error) string {
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
			return ip4.String()
		}
	}
	return ""
}
