package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/looplab/fsm"
)

func newMachine(enter func(ctx context.Context, e *fsm.Event) error) *fsm.FSM {
	return fsm.NewFSM("down",
		fsm.Events{
			{Name: "up", Src: []string{"down", "up"}, Dst: "up"},
			{Name: "down", Src: []string{"up"}, Dst: "down"},
		},
		fsm.Callbacks{
			"enter_up": WrapEvent(enter),
		},
	)
}

func TestWrapEvent(t *testing.T) {
	boom := errors.New("boom")
	m := newMachine(func(ctx context.Context, e *fsm.Event) error { return boom })

	err := m.Event(context.Background(), "up")
	if !errors.Is(err, boom) {
		t.Fatalf("Event() error = %v, want %v", err, boom)
	}
}

func TestIsRealError(t *testing.T) {
	m := newMachine(func(ctx context.Context, e *fsm.Event) error { return nil })
	ctx := context.Background()

	if err := m.Event(ctx, "up"); IsRealError(err) {
		t.Fatalf("first transition failed: %v", err)
	}

	// Same state again.
	err := m.Event(ctx, "up")
	if err == nil {
		t.Fatal("expected NoTransitionError")
	}
	if IsRealError(err) {
		t.Errorf("IsRealError(%v) = true, want false", err)
	}

	err = m.Event(ctx, "unknown")
	if !IsRealError(err) {
		t.Errorf("IsRealError(%v) = false, want true", err)
	}

	if IsRealError(nil) {
		t.Error("IsRealError(nil) = true")
	}
}
