package bus

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/sensoragent/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/sensoragent/internal/pkg/util/fsm"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// State is the bus session state.
type State string

const (
	StateDisconnected State = "Disconnected"
	StateConnected    State = "Connected"
)

const (
	// EventConnected is fired after a successful handshake.
	EventConnected = "event_connected"
	// EventDisconnected is fired when the session is found dead or closed.
	EventDisconnected = "event_disconnected"
)

func newStateMachine() *fsm.FSM {
	all := []string{string(StateDisconnected), string(StateConnected)}
	events := fsm.Events{
		{Name: EventConnected, Src: all, Dst: string(StateConnected)},
		{Name: EventDisconnected, Src: all, Dst: string(StateDisconnected)},
	}

	callbacks := fsm.Callbacks{
		"enter_" + string(StateConnected):    fsmutil.WrapEvent(actionEnterConnected),
		"enter_" + string(StateDisconnected): fsmutil.WrapEvent(actionEnterDisconnected),
	}

	metrics.SessionConnected.Set(0)
	return fsm.NewFSM(string(StateDisconnected), events, callbacks)
}

func actionEnterConnected(ctx context.Context, e *fsm.Event) error {
	metrics.SessionConnected.Set(1)
	log.Debug("Session state changed", "from", e.Src, "to", e.Dst)
	return nil
}

func actionEnterDisconnected(ctx context.Context, e *fsm.Event) error {
	metrics.SessionConnected.Set(0)
	log.Debug("Session state changed", "from", e.Src, "to", e.Dst)
	return nil
}
