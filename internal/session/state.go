package session

import "fmt"

// State is the turn controller's admission state. A session is Idle between
// turns, Sending from admission until the first response event, and
// Streaming while response events are being applied to the transcript.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// legalTransitions enumerates the permitted state changes. Anything else is
// a defensive error rather than a silent ignore.
var legalTransitions = map[State][]State{
	StateIdle:      {StateSending},
	StateSending:   {StateStreaming, StateIdle},
	StateStreaming: {StateIdle},
}

// canTransition reports whether moving from one state to another is legal.
func canTransition(from, to State) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
