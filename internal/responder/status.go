package responder

import "sync/atomic"

// State is the connection state of a gateway.
type State int32

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Status tracks a gateway's connection state. The zero value is Disconnected.
type Status struct {
	state atomic.Int32
}

func (s *Status) Set(state State) {
	s.state.Store(int32(state))
}

func (s *Status) Get() State {
	return State(s.state.Load())
}
