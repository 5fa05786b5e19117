package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*RestartOptions)(nil)

// Supported restart modes.
const (
	RestartModeExec   = "exec"
	RestartModeExit   = "exit"
	RestartModeReboot = "reboot"
)

// RestartOptions configures how the agent restarts itself when the network
// association cannot be established.
type RestartOptions struct {
	Mode  string        `json:"mode" mapstructure:"mode"`
	Delay time.Duration `json:"delay" mapstructure:"delay"`
}

// NewRestartOptions creates a RestartOptions object with default parameters.
func NewRestartOptions() *RestartOptions {
	return &RestartOptions{
		Mode:  RestartModeExec,
		Delay: 5 * time.Second,
	}
}

// Validate checks the restart options.
func (o *RestartOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	switch o.Mode {
	case RestartModeExec, RestartModeExit, RestartModeReboot:
	default:
		errors = append(errors, fmt.Errorf("unsupported restart mode %q", o.Mode))
	}
	if o.Delay < 0 {
		errors = append(errors, fmt.Errorf("--restart.delay must not be negative"))
	}

	return errors
}

// AddFlags adds flags related to self restart to the specified FlagSet.
func (o *RestartOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Mode, "restart.mode", o.Mode, "How to restart when association fails: 'exec', 'exit' or 'reboot'.")
	fs.DurationVar(&o.Delay, "restart.delay", o.Delay, "Wait before restarting.")
}
