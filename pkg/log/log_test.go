package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	prev := std
	t.Cleanup(func() { std = prev })

	opts := NewOptions()
	opts.OutputPaths = []string{t.TempDir() + "/agent.log"}
	std = NewLogger(opts)
	child := WithName("bus")

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	z := child.(*zapLogger)
	if !z.core.Core().Enabled(zapcore.DebugLevel) {
		t.Error("child logger did not follow the new level")
	}

	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel() accepted an invalid level")
	}
}

func TestNopLoggerSetLevel(t *testing.T) {
	prev := std
	t.Cleanup(func() { std = prev })

	std = NewNopLogger()
	if err := SetLevel("warn"); err != nil {
		t.Errorf("SetLevel() on nop logger error = %v", err)
	}
}
