package mqtt

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/autopeer-io/sensoragent/pkg/log"
)

// printLogger adapts a logr.Logger to the Println/Printf interface both
// paho libraries expect for their internal loggers.
type printLogger struct {
	l     logr.Logger
	isErr bool
}

func newDebugLogger(name string) printLogger {
	return printLogger{l: log.Logr().WithName(name).V(1)}
}

func newErrorLogger(name string) printLogger {
	return printLogger{l: log.Logr().WithName(name), isErr: true}
}

func (p printLogger) Println(v ...any) {
	p.emit(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (p printLogger) Printf(format string, v ...any) {
	p.emit(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (p printLogger) emit(msg string) {
	if p.isErr {
		p.l.Error(nil, msg)
		return
	}
	p.l.Info(msg)
}
