package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*MetricsOptions)(nil)

// MetricsOptions contains configuration items for the health and metrics endpoint.
type MetricsOptions struct {
	// Address with server address. Empty disables the endpoint.
	Addr string `json:"addr" mapstructure:"addr"`

	// Timeout bounds reading a request and writing its response.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewMetricsOptions creates a MetricsOptions object with default parameters.
func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{
		Addr:    "",
		Timeout: 10 * time.Second,
	}
}

// Enabled reports whether the endpoint should be served.
func (o *MetricsOptions) Enabled() bool {
	return o != nil && o.Addr != ""
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *MetricsOptions) Validate() []error {
	if !o.Enabled() {
		return nil
	}

	errors := []error{}

	if err := ValidateAddress(o.Addr); err != nil {
		errors = append(errors, err)
	}

	return errors
}

// AddFlags adds flags related to the metrics endpoint to the specified FlagSet.
func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, "metrics.addr", o.Addr, "Bind address for /healthz, /readyz and /metrics (e.g. ':9090'). Empty disables it.")
	fs.DurationVar(&o.Timeout, "metrics.timeout", o.Timeout, "Read and write timeout for HTTP requests.")
}
