// Package fsm models the lifecycle of a single command exchange.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateSending    State = "sending"
	StateReceiving  State = "receiving"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

const (
	EventDial      Event = "dial"
	EventConnected Event = "connected"
	EventSent      Event = "sent"
	EventEOF       Event = "eof"
	EventFail      Event = "fail"
)

// Terminal reports whether no further transition is possible from s.
func Terminal(s State) bool {
	return s == StateDone || s == StateFailed
}

func Transition(current State, event Event) (State, error) {
	if Terminal(current) {
		return current, invalidTransition(current, event)
	}
	if event == EventFail {
		switch current {
		case StateIdle, StateConnecting, StateSending, StateReceiving:
			return StateFailed, nil
		}
	}

	switch current {
	case StateIdle:
		switch event {
		case EventDial:
			return StateConnecting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConnecting:
		switch event {
		case EventConnected:
			return StateSending, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSending:
		switch event {
		case EventSent:
			return StateReceiving, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateReceiving:
		switch event {
		case EventEOF:
			return StateDone, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
