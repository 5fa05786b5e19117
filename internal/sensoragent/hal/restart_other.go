//go:build !linux

package hal

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/autopeer-io/sensoragent/internal/sensoragent/core"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// ExecRestarter starts a fresh copy of the agent and exits.
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
	log.Warn("[HAL-Mock] Agent is restarting NOW...", "executable", r.path)

	cmd := exec.Command(r.path, os.Args[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start new agent process: %w", err)
	}

	_ = log.Sync()
	os.Exit(0)
	return nil
}

func newRebootRestarter() (core.Restarter, error) {
	return nil, errors.New("reboot restart mode is only supported on linux")
}
