package link

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/sensoragent/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/sensoragent/internal/pkg/util/fsm"
	"github.com/autopeer-io/sensoragent/pkg/log"
)

// State is the network association state.
type State string

const (
	StateDisconnected State = "Disconnected"
	StateConnecting   State = "Connecting"
	StateConnected    State = "Connected"
)

const (
	// EventBegin starts an association attempt.
	EventBegin = "event_begin"
	// EventUp is fired when the station reports connected.
	EventUp = "event_up"
	// EventDown is fired when the association is lost or abandoned.
	EventDown = "event_down"
)

var allStates = []string{string(StateDisconnected), string(StateConnecting), string(StateConnected)}

func newStateMachine() *fsm.FSM {
	events := fsm.Events{
		{Name: EventBegin, Src: allStates, Dst: string(StateConnecting)},
		{Name: EventUp, Src: allStates, Dst: string(StateConnected)},
		{Name: EventDown, Src: allStates, Dst: string(StateDisconnected)},
	}

	callbacks := fsm.Callbacks{
		"enter_state": fsmutil.WrapEvent(actionEnterState),
	}

	metrics.LinkState.Set(stateValue(string(StateDisconnected)))
	return fsm.NewFSM(string(StateDisconnected), events, callbacks)
}

func actionEnterState(ctx context.Context, e *fsm.Event) error {
	metrics.LinkState.Set(stateValue(e.Dst))
	log.Debug("Link state changed", "from", e.Src, "to", e.Dst, "event", e.Event)
	return nil
}

func stateValue(s string) float64 {
	switch State(s) {
	case StateConnecting:
		return 1
	case StateConnected:
		return 2
	default:
		return 0
	}
}
