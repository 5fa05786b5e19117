package log

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

var formats = []string{"console", "json"}

// Options configures the agent logger.
type Options struct {
	// Name prefixes every entry's logger field.
	Name string `json:"name,omitempty" mapstructure:"name"`

	// Level is the minimum level written: debug, info, warn or error. It can
	// be changed at runtime through SetLevel.
	Level string `json:"level,omitempty" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format,omitempty" mapstructure:"format"`

	// EnableColor colors the level in console output.
	EnableColor bool `json:"enable-color,omitempty" mapstructure:"enable-color"`

	// DisableCaller drops the file:line annotation.
	DisableCaller bool `json:"disable-caller,omitempty" mapstructure:"disable-caller"`

	// Sampling caps repeated entries per second. Useful on flash storage when
	// the session flaps.
	Sampling bool `json:"sampling,omitempty" mapstructure:"sampling"`

	// OutputPaths are files, or "stdout"/"stderr".
	OutputPaths []string `json:"output-paths,omitempty" mapstructure:"output-paths"`
}

func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
		OutputPaths: []string{"stdout"},
	}
}

// Validate checks the level and the format.
func (o *Options) Validate() []error {
	var errs []error

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", o.Level))
	}
	if !slices.Contains(formats, o.Format) {
		errs = append(errs, fmt.Errorf("invalid log format %q, must be one of %v", o.Format, formats))
	}

	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level: debug, info, warn or error.")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log encoding: console or json.")
	fs.StringVar(&o.Name, "log.name", o.Name, "Logger name added to every entry.")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Color levels in console output.")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Omit the file:line of the log call.")
	fs.BoolVar(&o.Sampling, "log.sampling", o.Sampling, "Sample repeated entries to bound log volume.")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Log destinations, files or stdout/stderr.")
}
