package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/opd-ai/streamplayer/video"
)

// instantTimeProvider fires every timer immediately and records delays.
type instantTimeProvider struct {
	mu     sync.Mutex
	now    time.Time
	delays []time.Duration
}

func newInstantTimeProvider() *instantTimeProvider {
	return &instantTimeProvider{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (tp *instantTimeProvider) Now() time.Time {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.now
}

func (tp *instantTimeProvider) NewTimer(d time.Duration) *time.Timer {
	tp.mu.Lock()
	tp.delays = append(tp.delays, d)
	tp.mu.Unlock()
	return time.NewTimer(0)
}

// scriptedDecoder returns the pictures in order, then err (io.EOF when nil).
// When gate is non-nil every NextPicture waits for a value on it first.
type scriptedDecoder struct {
	pictures []*video.Picture
	endless  bool
	err      error
	panicAt  int
	gate     chan struct{}
	delay    time.Duration

	mu     sync.Mutex
	calls  int
	closed bool
}

func (d *scriptedDecoder) NextPicture() (*video.Picture, error) {
	if d.gate != nil {
		<-d.gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.panicAt > 0 && d.calls == d.panicAt {
		panic("decoder exploded")
	}
	if d.endless {
		return d.pictures[0], nil
	}
	if d.calls <= len(d.pictures) {
		return d.pictures[d.calls-1], nil
	}
	if d.err != nil {
		return nil, d.err
	}
	return nil, io.EOF
}

func (d *scriptedDecoder) InterFrameDelay() time.Duration { return d.delay }

func (d *scriptedDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *scriptedDecoder) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// countingOpener hands out the same decoder and counts Open calls.
type countingOpener struct {
	mu      sync.Mutex
	decoder Decoder
	err     error
	opens   int
	urls    []string
}

func (o *countingOpener) Open(_ context.Context, url string) (Decoder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	o.urls = append(o.urls, url)
	if o.err != nil {
		return nil, o.err
	}
	return o.decoder, nil
}

func (o *countingOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// eventRecorder collects events posted by a session.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
	seen   chan Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{seen: make(chan Event, 1024)}
}

func (r *eventRecorder) Notify(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.seen <- ev:
	default:
	}
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *eventRecorder) lifecycle() []EventKind {
	var out []EventKind
	for _, k := range r.kinds() {
		if k != EventInvalidate {
			out = append(out, k)
		}
	}
	return out
}

func (r *eventRecorder) waitFor(kind EventKind, timeout time.Duration) (Event, error) {
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-r.seen:
			if ev.Kind == kind {
				return ev, nil
			}
		case <-deadline:
			return Event{}, errors.New("timed out waiting for " + kind.String())
		}
	}
}

func bgrPicture(width, height int, value byte) *video.Picture {
	p := video.NewBGRPicture(width, height)
	for i := range p.Data[0] {
		p.Data[0][i] = value
	}
	return p
}
