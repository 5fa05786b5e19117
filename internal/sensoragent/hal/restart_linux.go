//go:build linux

package hal

import (
	"fmt"
	"os"
	"syscall"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// ExecRestarter replaces the running process with a fresh copy of itself,
// keeping the PID, arguments and environment.
type ExecRestarter struct {
	path string
}

func newExecRestarter() (core.Restarter, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve own executable: %w", err)
	}
	return &ExecRestarter{path: path}, nil
}

func (r *ExecRestarter) Restart() error {
	log.Warn("Agent is restarting NOW...", "executable", r.path)
	_ = log.Sync()
	return syscall.Exec(r.path, os.Args, os.Environ())
}

// RebootRestarter restarts the whole system. It needs CAP_SYS_BOOT.
type RebootRestarter struct{}

func newRebootRestarter() (core.Restarter, error) {
	return &RebootRestarter{}, nil
}

func (r *RebootRestarter) Restart() error {
	log.Info("System is rebooting NOW...")
	_ = log.Sync()
	syscall.Sync()
	return syscall.Reboot(syscall.LINUX_REBOOT_CMD_RESTART)
}
