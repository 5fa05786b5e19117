package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ScheduleOptions)(nil)

// ScheduleOptions configures the sampling loop.
type ScheduleOptions struct {
	// Period is the fixed interval between sampling attempts.
	Period time.Duration `json:"period" mapstructure:"period"`

	// Idle is the pause between two loop iterations.
	Idle time.Duration `json:"idle" mapstructure:"idle"`
}

// NewScheduleOptions creates a ScheduleOptions object with default parameters.
func NewScheduleOptions() *ScheduleOptions {
	return &ScheduleOptions{
		Period: 10 * time.Second,
		Idle:   50 * time.Millisecond,
	}
}

// Validate checks the schedule options.
func (o *ScheduleOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.Period <= 0 {
		errors = append(errors, fmt.Errorf("--schedule.period must be positive"))
	}
	if o.Idle <= 0 || o.Idle > o.Period {
		errors = append(errors, fmt.Errorf("--schedule.idle must be positive and not longer than the period"))
	}

	return errors
}

// AddFlags adds flags related to the schedule to the specified FlagSet.
func (o *ScheduleOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.Period, "schedule.period", o.Period, "Interval between sensor readings.")
	fs.DurationVar(&o.Idle, "schedule.idle", o.Idle, "Pause between two iterations of the device loop.")
}
