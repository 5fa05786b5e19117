//go:build !linux

package hal

func wirelessLevel(iface string) int {
	return 0
}
