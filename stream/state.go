package stream

import (
	"github.com/vertexvis/stream-go/channel"
	"github.com/vertexvis/stream-go/clock"
	"github.com/vertexvis/stream-go/resource"
	"github.com/vertexvis/stream-go/token"
)

// State is the session state tagged union. Exactly one concrete state is
// active at a time; every transition replaces the whole value atomically
// and notifies subscribers exactly once. The concrete types are
// *Disconnected, *Connecting, *Connected, *Reconnecting, and
// *ConnectionFailed.
//
// State values are immutable once published: the coordinator builds a new
// value for every transition, so a listener can hold one without copying.
type State interface {
	streamState()
	// String names the state for logging.
	String() string
}

// Disconnected is the idle state: no connection object exists. It is also
// the state after an explicit Disconnect.
type Disconnected struct{}

func (*Disconnected) streamState()   {}
func (*Disconnected) String() string { return "disconnected" }

// Connecting is a transport open attempt in flight for a brand-new
// session.
type Connecting struct {
	Resource *resource.Resource

	handle *handle
}

func (*Connecting) streamState()   {}
func (*Connecting) String() string { return "connecting" }

// Connected is a live session.
type Connected struct {
	Resource         *resource.Resource
	StreamID         string
	SceneViewID      string
	SessionID        string
	Token            token.Token
	Frame            *channel.Frame
	Clock            clock.Synchronized
	WorldOrientation channel.Orientation

	handle *handle
}

func (*Connected) streamState()   {}
func (*Connected) String() string { return "connected" }

// Reconnecting is re-establishing a session that previously reached
// Connected, preserving the prior stream id. The last frame, scene view,
// and orientation are carried so the session resumes where it left off.
type Reconnecting struct {
	Resource         *resource.Resource
	StreamID         string
	SceneViewID      string
	SessionID        string
	Frame            *channel.Frame
	WorldOrientation channel.Orientation

	handle *handle
}

func (*Reconnecting) streamState()   {}
func (*Reconnecting) String() string { return "reconnecting" }

// ConnectionFailed is terminal until a new explicit Load. Message is a
// human-readable diagnostic; Err carries the classified cause.
type ConnectionFailed struct {
	Message string
	Err     error
}

func (*ConnectionFailed) streamState()   {}
func (*ConnectionFailed) String() string { return "connection-failed" }

// StateChange is delivered to state subscribers once per completed
// transition.
type StateChange struct {
	Previous State
	Current  State
}

// stateHandle returns the connection handle owned by s, or nil for states
// without one.
func stateHandle(s State) *handle {
	switch st := s.(type) {
	case *Connecting:
		return st.handle
	case *Connected:
		return st.handle
	case *Reconnecting:
		return st.handle
	default:
		return nil
	}
}
