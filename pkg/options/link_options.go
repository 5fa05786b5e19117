package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*LinkOptions)(nil)

// Supported network association drivers.
const (
	LinkDriverHost  = "host"
	LinkDriverNmcli = "nmcli"
)

// LinkOptions configures the network association performed once at boot.
type LinkOptions struct {
	Driver    string `json:"driver" mapstructure:"driver"`
	Interface string `json:"interface" mapstructure:"interface"`
	SSID      string `json:"ssid" mapstructure:"ssid"`
	Password  string `json:"password" mapstructure:"password"`

	// MaxAttempts is the number of status polls after Begin before giving up.
	MaxAttempts     int           `json:"max-attempts" mapstructure:"max-attempts"`
	AttemptInterval time.Duration `json:"attempt-interval" mapstructure:"attempt-interval"`

	// RecoverOnSessionLoss re-runs the association before a bus reconnect
	// when the station no longer reports connected.
	RecoverOnSessionLoss bool `json:"recover-on-session-loss" mapstructure:"recover-on-session-loss"`
}

// NewLinkOptions creates a LinkOptions object with default parameters.
func NewLinkOptions() *LinkOptions {
	return &LinkOptions{
		Driver:          LinkDriverHost,
		MaxAttempts:     40,
		AttemptInterval: 500 * time.Millisecond,
	}
}

// Budget is the total time the association is allowed to take.
func (o *LinkOptions) Budget() time.Duration {
	return time.Duration(o.MaxAttempts) * o.AttemptInterval
}

// Validate checks the association options.
func (o *LinkOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	switch o.Driver {
	case LinkDriverHost:
	case LinkDriverNmcli:
		if o.SSID == "" {
			errors = append(errors, fmt.Errorf("--link.ssid is required for the %s driver", o.Driver))
		}
		if o.Interface == "" {
			errors = append(errors, fmt.Errorf("--link.interface is required for the %s driver", o.Driver))
		}
	default:
		errors = append(errors, fmt.Errorf("unsupported link driver %q", o.Driver))
	}

	if o.MaxAttempts < 1 {
		errors = append(errors, fmt.Errorf("--link.max-attempts must be at least 1"))
	}
	if o.AttemptInterval <= 0 {
		errors = append(errors, fmt.Errorf("--link.attempt-interval must be positive"))
	}

	return errors
}

// AddFlags adds flags related to the network association to the specified FlagSet.
func (o *LinkOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Driver, "link.driver", o.Driver, "Network association driver: 'host' or 'nmcli'.")
	fs.StringVar(&o.Interface, "link.interface", o.Interface, "Network interface to associate and report (e.g. 'wlan0'). Empty means any.")
	fs.StringVar(&o.SSID, "link.ssid", o.SSID, "Wireless network name.")
	fs.StringVar(&o.Password, "link.password", o.Password, "Wireless network passphrase.")
	fs.IntVar(&o.MaxAttempts, "link.max-attempts", o.MaxAttempts, "Status polls after starting the association before the device restarts.")
	fs.DurationVar(&o.AttemptInterval, "link.attempt-interval", o.AttemptInterval, "Wait between association status polls.")
	fs.BoolVar(&o.RecoverOnSessionLoss, "link.recover-on-session-loss", o.RecoverOnSessionLoss,
		"Re-run the association before reconnecting the bus when the station is no longer connected.")
}
