package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event is not accepted in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is a step of the capture lifecycle.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateRecognizing
	StateSolving
	StateDisplaying
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateCapturing:   "capturing",
	StateRecognizing: "recognizing",
	StateSolving:     "solving",
	StateDisplaying:  "displaying",
	StateFailed:      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Event drives a transition.
type Event int

const (
	EventStartCapture Event = iota
	EventSubmitImage
	EventSubmitEquation
	EventRecognized
	EventRecognitionFailed
	EventSolved
	EventReset
)

var eventNames = map[Event]string{
	EventStartCapture:      "start_capture",
	EventSubmitImage:       "submit_image",
	EventSubmitEquation:    "submit_equation",
	EventRecognized:        "recognized",
	EventRecognitionFailed: "recognition_failed",
	EventSolved:            "solved",
	EventReset:             "reset",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// transitions lists every accepted (state, event) pair. Reset is accepted
// everywhere; StartCapture is accepted wherever no solve is running.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStartCapture:   StateCapturing,
		EventSubmitEquation: StateSolving,
		EventReset:          StateIdle,
	},
	StateCapturing: {
		EventStartCapture:   StateCapturing,
		EventSubmitImage:    StateRecognizing,
		EventSubmitEquation: StateSolving,
		EventReset:          StateIdle,
	},
	StateRecognizing: {
		EventStartCapture:      StateCapturing,
		EventRecognized:        StateSolving,
		EventRecognitionFailed: StateFailed,
		EventReset:             StateIdle,
	},
	StateSolving: {
		EventSolved: StateDisplaying,
		EventReset:  StateIdle,
	},
	StateDisplaying: {
		EventStartCapture:   StateCapturing,
		EventSubmitEquation: StateSolving,
		EventReset:          StateIdle,
	},
	StateFailed: {
		EventStartCapture:   StateCapturing,
		EventSubmitEquation: StateSolving,
		EventReset:          StateIdle,
	},
}

// Next returns the state reached from s on e.
func Next(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
	}
	return next, nil
}
