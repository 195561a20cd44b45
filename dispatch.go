package streamplayer

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamplayer/host"
	"github.com/opd-ai/streamplayer/session"
	"github.com/opd-ai/streamplayer/video"
)

var eventMessages = map[session.EventKind]host.MessageKind{
	session.EventInvalidate: host.MsgInvalidate,
	session.EventStarted:    host.MsgStreamStarted,
	session.EventStopped:    host.MsgStreamStopped,
	session.EventFailed:     host.MsgStreamFailed,
}

// notify runs on decode goroutines and forwards events to the window queue.
// At most one MsgInvalidate per stream is queued at a time; a decoder that
// outruns the dispatch thread just repaints the latest picture.
func (p *Player) notify(ev session.Event) {
	b := p.bound.Load()
	if b == nil {
		return
	}
	kind, ok := eventMessages[ev.Kind]
	if !ok {
		return
	}

	var pending *atomic.Bool
	if kind == host.MsgInvalidate {
		pending = b.invalidatePending(ev.Stream)
		if pending != nil && !pending.CompareAndSwap(false, true) {
			return
		}
	}

	msg := host.Message{Kind: kind, Stream: uint32(ev.Stream), Err: ev.Err}
	if err := b.window.PostMessage(msg); err != nil {
		if pending != nil {
			pending.Store(false)
		}
		log := logrus.WithFields(logrus.Fields{
			"function": "Player.notify",
			"stream":   ev.Stream,
			"run_id":   ev.RunID,
			"message":  kind,
			"error":    err.Error(),
		})
		if kind == host.MsgInvalidate {
			log.Debug("Failed to post window message")
		} else {
			log.Warn("Dropped stream lifecycle message")
		}
	}
}

// proc returns the window procedure installed by Initialize.
func (p *Player) proc(b *binding) host.Proc {
	return func(w host.Window, msg host.Message) int {
		stream := session.Stream(msg.Stream)

		switch msg.Kind {
		case host.MsgInvalidate:
			if pending := b.invalidatePending(stream); pending != nil {
				pending.Store(false)
			}
			w.Invalidate()
		case host.MsgPaint:
			p.paint(w)
		case host.MsgStreamStarted:
			b.onStarted(stream)
		case host.MsgStreamStopped:
			b.onStopped(stream)
		case host.MsgStreamFailed:
			b.onFailed(stream, msg.Err)
		case host.MsgEraseBackground:
			// Every paint covers the whole surface.
			return 1
		}

		return b.prev(w, msg)
	}
}

// paint composites the current pictures onto the window surface.
func (p *Player) paint(w host.Window) {
	primary := p.primary.Buffer()
	if primary == nil {
		return
	}
	var overlay *video.Buffer
	if p.overlay.Live() {
		overlay = p.overlay.Buffer()
	}

	surface, err := w.BeginPaint()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Player.paint",
			"window":   w.Handle(),
			"error":    err.Error(),
		}).Warn("BeginPaint failed")
		return
	}
	defer w.EndPaint()

	s := p.Settings()
	params := video.Params{Zoom: s.Zoom, CrossLength: s.CrossLength, Overlay: s.PiP}
	if err := p.compositor.Composite(surface, primary, overlay, params); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Player.paint",
			"window":   w.Handle(),
			"error":    err.Error(),
		}).Warn("Composite failed")
	}
}
