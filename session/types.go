package session

import (
	"errors"
	"fmt"
	"time"
)

// ErrDecode wraps every failure inside a decode run: the source could not be
// opened, a picture could not be decoded or ingested, or the decoder panicked.
var ErrDecode = errors.New("decode error")

// Stream identifies one of the two decode loops a player runs.
type Stream uint32

const (
	// StreamPrimary is the main picture.
	StreamPrimary Stream = iota
	// StreamOverlay is the picture-in-picture inset.
	StreamOverlay
)

// String returns the stream name used in logs.
func (s Stream) String() string {
	switch s {
	case StreamPrimary:
		return "primary"
	case StreamOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("stream-%d", uint32(s))
	}
}

// State is the lifecycle state of a session.
type State int32

const (
	// StateIdle means no decode run is active.
	StateIdle State = iota
	// StateRunning means a decode run owns the run token.
	StateRunning
	// StateStopped means the run ended on request or at end of stream.
	StateStopped
	// StateFailed means the run ended with a decode error.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// EventKind classifies notifications posted by a decode run.
type EventKind int

const (
	// EventInvalidate asks the host to repaint.
	EventInvalidate EventKind = iota
	// EventStarted follows the first successfully displayed picture.
	EventStarted
	// EventStopped reports a stop request or end of stream.
	EventStopped
	// EventFailed reports a decode error.
	EventFailed
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventInvalidate:
		return "invalidate"
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a notification from a decode run to the host's dispatch thread.
type Event struct {
	Kind   EventKind
	Stream Stream
	RunID  string
	// Err is set for EventFailed.
	Err error
}

// Notifier receives events from the decode goroutine. Notify must not block
// and must not call back into host code directly; implementations post the
// event to a queue drained by the host's dispatch thread.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ev Event)

// Notify calls f(ev).
func (f NotifierFunc) Notify(ev Event) {
	f(ev)
}

// Stats reports the activity of a session across runs.
type Stats struct {
	Stream        Stream
	State         State
	RunID         string
	Runs          uint64
	FramesDecoded uint64
	Failures      uint64
	LastFrameAt   time.Time
	LastError     error
}
