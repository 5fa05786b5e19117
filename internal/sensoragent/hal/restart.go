package hal

import (
	"fmt"
	"os"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// Restart modes.
const (
	RestartExec   = "exec"
	RestartExit   = "exit"
	RestartReboot = "reboot"
)

// ExitCodeRestart asks the supervisor (systemd, a container runtime) to
// start the agent again. It is EX_TEMPFAIL from sysexits.h.
const ExitCodeRestart = 75

// NewRestarter returns the restart primitive for the given mode.
func NewRestarter(mode string) (core.Restarter, error) {
	switch mode {
	case RestartExec:
		return newExecRestarter()
	case RestartExit:
		return &ExitRestarter{exit: os.Exit}, nil
	case RestartReboot:
		return newRebootRestarter()
	default:
		return nil, fmt.Errorf("unknown restart mode %q", mode)
	}
}

// ExitRestarter ends the process with ExitCodeRestart.
type ExitRestarter struct {
	exit func(code int)
}

func (r *ExitRestarter) Restart() error {
	log.Warn("Exiting so the supervisor restarts the agent", "code", ExitCodeRestart)
	_ = log.Sync()
	r.exit(ExitCodeRestart)
	return nil
}
