package host

import (
	"errors"
	"fmt"

	"golang.org/x/image/draw"
)

var (
	// ErrQueueFull indicates the window's message queue cannot take more messages.
	ErrQueueFull = errors.New("message queue full")

	// ErrWindowClosed indicates the window no longer accepts messages.
	ErrWindowClosed = errors.New("window closed")

	// ErrNotPainting indicates EndPaint without a matching BeginPaint.
	ErrNotPainting = errors.New("no paint in progress")
)

// Handle identifies a host window.
type Handle uintptr

// MessageKind identifies a window message.
type MessageKind uint32

const (
	// MsgPaint asks the window procedure to draw the paint surface.
	MsgPaint MessageKind = 0x000F
	// MsgEraseBackground precedes every MsgPaint. A procedure that returns
	// non-zero has taken care of the background and the window leaves the
	// surface alone.
	MsgEraseBackground MessageKind = 0x0014

	// MsgUser is the first message number available for private use.
	MsgUser MessageKind = 0x0400

	// MsgInvalidate asks the dispatch thread to schedule a repaint.
	MsgInvalidate = MsgUser + 1
	// MsgStreamStarted reports that a stream displayed its first picture.
	MsgStreamStarted = MsgUser + 2
	// MsgStreamStopped reports that a stream stopped.
	MsgStreamStopped = MsgUser + 3
	// MsgStreamFailed reports that a stream failed.
	MsgStreamFailed = MsgUser + 4
)

// String returns the message name.
func (k MessageKind) String() string {
	switch k {
	case MsgPaint:
		return "paint"
	case MsgEraseBackground:
		return "erase_background"
	case MsgInvalidate:
		return "invalidate"
	case MsgStreamStarted:
		return "stream_started"
	case MsgStreamStopped:
		return "stream_stopped"
	case MsgStreamFailed:
		return "stream_failed"
	default:
		return fmt.Sprintf("MessageKind(%#x)", uint32(k))
	}
}

// lifecycle reports whether k announces a stream starting, stopping or
// failing.
func (k MessageKind) lifecycle() bool {
	return k == MsgStreamStarted || k == MsgStreamStopped || k == MsgStreamFailed
}

// Message is one entry in a window's message queue.
type Message struct {
	Kind MessageKind
	// Stream is the stream number for stream messages.
	Stream uint32
	// Err carries the failure cause for MsgStreamFailed.
	Err error
}

// Proc is a window procedure. It runs on the window's dispatch thread.
type Proc func(w Window, msg Message) int

// DefaultProc ignores every message.
func DefaultProc(Window, Message) int { return 0 }

// Window is the host window contract.
//
// PostMessage and Invalidate may be called from any goroutine; the message is
// queued and later handed to the installed Proc on the dispatch thread.
// BeginPaint and EndPaint are only called from the Proc while it handles
// MsgPaint.
type Window interface {
	Handle() Handle
	// SetProc installs p as the window procedure and returns the previous one.
	SetProc(p Proc) Proc
	PostMessage(msg Message) error
	// PeekMessage removes and returns the oldest pending message.
	PeekMessage() (Message, bool)
	// Invalidate schedules a MsgPaint. Repeated calls before the paint is
	// dispatched are coalesced.
	Invalidate()
	BeginPaint() (draw.Image, error)
	EndPaint() error
}
