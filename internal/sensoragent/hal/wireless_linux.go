//go:build linux

package hal

import (
	"os"
)

const procWireless = "/proc/net/wireless"

// wirelessLevel returns the signal level of iface in dBm, or 0 when it is
// not a wireless interface.
func wirelessLevel(iface string) int {
	f, err := os.Open(procWireless)
	if err != nil {
		return 0
	}
	defer f.Close()

	level, _ := parseWireless(f, iface)
	return level
}
