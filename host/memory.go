package host

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

const (
	// DefaultQueueSize is the number of ordinary messages a MemoryWindow
	// queues before PostMessage reports ErrQueueFull.
	DefaultQueueSize = 1024
	// ReservedQueueSlots are kept free for stream lifecycle messages so that
	// a backlog of repaint requests cannot crowd them out.
	ReservedQueueSlots = 64
)

var nextHandle atomic.Uintptr

// MemoryWindow is a headless Window backed by an RGBA paint surface.
//
// Messages are dispatched either by Run, which turns the calling goroutine
// into the window's dispatch thread, or by DispatchPending for step-by-step
// control in tests and embedding hosts.
type MemoryWindow struct {
	handle Handle
	queue  chan Message
	postMu sync.Mutex

	paintPending atomic.Bool

	mu       sync.Mutex
	proc     Proc
	surface  *image.RGBA
	painting bool
	paints   uint64
	onPaint  func(surface *image.RGBA)
	closed   bool
}

// NewMemoryWindow creates a window with a width x height paint surface.
func NewMemoryWindow(width, height int) *MemoryWindow {
	w := &MemoryWindow{
		handle:  Handle(nextHandle.Add(1)),
		queue:   make(chan Message, DefaultQueueSize+ReservedQueueSlots),
		proc:    DefaultProc,
		surface: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewMemoryWindow",
		"handle":   w.handle,
		"width":    width,
		"height":   height,
	}).Debug("Created memory window")

	return w
}

// Handle returns the window handle.
func (w *MemoryWindow) Handle() Handle { return w.handle }

// SetProc installs p and returns the previous procedure. A nil p installs
// DefaultProc.
func (w *MemoryWindow) SetProc(p Proc) Proc {
	if p == nil {
		p = DefaultProc
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.proc
	w.proc = p
	return prev
}

// OnPaint registers fn to observe the surface after each EndPaint.
func (w *MemoryWindow) OnPaint(fn func(surface *image.RGBA)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onPaint = fn
}

// PostMessage queues msg without blocking. Stream lifecycle messages may use
// the reserved slots once DefaultQueueSize ordinary messages are pending.
func (w *MemoryWindow) PostMessage(msg Message) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrWindowClosed
	}

	w.postMu.Lock()
	defer w.postMu.Unlock()
	if msg.Kind.lifecycle() || len(w.queue) < DefaultQueueSize {
		select {
		case w.queue <- msg:
			return nil
		default:
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "MemoryWindow.PostMessage",
		"handle":   w.handle,
		"message":  msg.Kind,
	}).Warn("Message queue full, dropping message")
	return ErrQueueFull
}

// PeekMessage removes and returns the oldest pending message.
func (w *MemoryWindow) PeekMessage() (Message, bool) {
	select {
	case msg := <-w.queue:
		if msg.Kind == MsgPaint {
			w.paintPending.Store(false)
		}
		return msg, true
	default:
		return Message{}, false
	}
}

// Invalidate schedules one MsgPaint.
func (w *MemoryWindow) Invalidate() {
	if !w.paintPending.CompareAndSwap(false, true) {
		return
	}
	if err := w.PostMessage(Message{Kind: MsgPaint}); err != nil {
		w.paintPending.Store(false)
	}
}

// BeginPaint returns the paint surface.
func (w *MemoryWindow) BeginPaint() (draw.Image, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.painting = true
	return w.surface, nil
}

// EndPaint finishes a paint started with BeginPaint.
func (w *MemoryWindow) EndPaint() error {
	w.mu.Lock()
	if !w.painting {
		w.mu.Unlock()
		return ErrNotPainting
	}
	w.painting = false
	w.paints++
	fn, surface := w.onPaint, w.surface
	w.mu.Unlock()

	if fn != nil {
		fn(surface)
	}
	return nil
}

// Resize replaces the paint surface with a blank width x height surface.
func (w *MemoryWindow) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surface = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// Surface returns a copy of the paint surface.
func (w *MemoryWindow) Surface() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := image.NewRGBA(w.surface.Bounds())
	copy(out.Pix, w.surface.Pix)
	return out
}

// Paints returns how many paints have completed.
func (w *MemoryWindow) Paints() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paints
}

// Pending returns the number of queued messages.
func (w *MemoryWindow) Pending() int {
	return len(w.queue)
}

// Dispatch hands msg to the installed procedure on the calling goroutine.
// A MsgPaint is preceded by MsgEraseBackground; if the procedure returns 0
// for it the surface is cleared.
func (w *MemoryWindow) Dispatch(msg Message) int {
	w.mu.Lock()
	proc := w.proc
	w.mu.Unlock()

	if msg.Kind == MsgPaint {
		w.paintPending.Store(false)
		if proc(w, Message{Kind: MsgEraseBackground}) == 0 {
			w.erase()
		}
	}
	return proc(w, msg)
}

func (w *MemoryWindow) erase() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.surface.Pix)
}

// DispatchPending dispatches queued messages until the queue is empty and
// returns how many were handled. Messages posted while dispatching are
// handled too.
func (w *MemoryWindow) DispatchPending() int {
	n := 0
	for {
		select {
		case msg := <-w.queue:
			w.Dispatch(msg)
			n++
		default:
			return n
		}
	}
}

// Run dispatches messages until ctx is done.
func (w *MemoryWindow) Run(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"function": "MemoryWindow.Run",
		"handle":   w.handle,
	}).Debug("Dispatch loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-w.queue:
			w.Dispatch(msg)
		}
	}
}

// Close stops the window from accepting messages and discards pending ones.
func (w *MemoryWindow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	for {
		if _, ok := w.PeekMessage(); !ok {
			return
		}
	}
}
