package hal

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// parseWireless extracts the signal level in dBm of iface from the
// /proc/net/wireless format. An empty iface matches the first entry.
//
//	Inter-| sta-|   Quality        |   Discarded packets
//	 face | tus | link level noise |  nwid  crypt   frag
//	 wlan0: 0000   54.  -56.  -256        0      0      0
func parseWireless(r io.Reader, iface string) (int, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if iface != "" && name != iface {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0, false
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, false
		}
		return int(level), true
	}
	return 0, false
}
