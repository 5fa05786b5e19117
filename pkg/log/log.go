package log

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger of the sensor agent. Key-value pairs
// follow the logr convention.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)

	// Error logs at ErrorLevel with err attached under the "error" key.
	Error(err error, msg string, keysAndValues ...any)

	// WithName returns a child logger with name appended to its name.
	WithName(name string) Logger

	// WithValues returns a child logger that adds keysAndValues to every entry.
	WithValues(keysAndValues ...any) Logger

	// Logr returns a logr.Logger backed by the same core. The MQTT
	// transports route their internal output through it.
	Logr() logr.Logger

	// Sync flushes buffered entries. Call it before the process exits.
	Sync() error
}

var (
	once sync.Once

	std Logger = NewNopLogger()
)

// Init replaces the global logger. Only the first call has an effect.
func Init(opts *Options) {
	once.Do(func() {
		std = NewLogger(opts)
	})
}

// Std returns the global logger.
func Std() Logger {
	return std
}

// SetLevel changes the minimum level of the global logger and of every
// logger derived from it.
func SetLevel(text string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("invalid log level %q", text)
	}

	if z, ok := std.(*zapLogger); ok && z.level != nil {
		z.level.SetLevel(lvl)
	}
	return nil
}

func Debug(msg string, keysAndValues ...any)            { std.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)             { std.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)             { std.Warn(msg, keysAndValues...) }
func Error(err error, msg string, keysAndValues ...any) { std.Error(err, msg, keysAndValues...) }
func WithName(name string) Logger                       { return std.WithName(name) }
func WithValues(keysAndValues ...any) Logger            { return std.WithValues(keysAndValues...) }
func Logr() logr.Logger                                 { return std.Logr() }
func Sync() error                                       { return std.Sync() }
