package streamplayer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamplayer/decoder"
	"github.com/opd-ai/streamplayer/host"
	"github.com/opd-ai/streamplayer/session"
	"github.com/opd-ai/streamplayer/video"
)

// StreamCallback is invoked on the window's dispatch thread when a stream
// starts or stops.
type StreamCallback func(stream session.Stream)

// FailureCallback is invoked on the window's dispatch thread when a stream fails.
type FailureCallback func(stream session.Stream, err error)

// Settings is a snapshot of the compositing configuration.
type Settings struct {
	Zoom        int
	CrossLength int
	PiP         video.Placement
}

// binding is the window a player is attached to between Initialize and
// Uninitialize.
type binding struct {
	window    host.Window
	prev      host.Proc
	onStarted StreamCallback
	onStopped StreamCallback
	onFailed  FailureCallback

	// invalidating is set per stream while a MsgInvalidate is queued.
	invalidating [2]atomic.Bool
}

// invalidatePending returns the queued-invalidate flag for s, or nil for a
// stream the player does not own.
func (b *binding) invalidatePending(s session.Stream) *atomic.Bool {
	if int(s) >= len(b.invalidating) {
		return nil
	}
	return &b.invalidating[s]
}

// Player plays a primary stream and an optional picture-in-picture stream
// into a host window.
//
// Decode loops never touch the window directly. They post messages that the
// window's dispatch thread turns into repaints and callback invocations.
type Player struct {
	options    *Options
	compositor *video.Compositor
	primary    *session.Session
	overlay    *session.Session

	// lifecycle serialises Initialize and Uninitialize.
	lifecycle sync.Mutex
	bound     atomic.Pointer[binding]

	// Compositing settings are read on every paint without a lock; each field
	// is last-writer-wins.
	zoom     atomic.Int64
	cross    atomic.Int64
	pipWidth atomic.Int64
	pipTop   atomic.Int64
	pipLeft  atomic.Int64
}

// New creates a Player. A nil options uses NewOptions.
func New(options *Options) (*Player, error) {
	if options == nil {
		options = NewOptions()
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	opener := options.Opener
	if opener == nil {
		opener = decoder.NewOpener(options.FFmpeg)
	}

	p := &Player{
		options:    options,
		compositor: video.NewCompositorWithSettings(options.BrightenDelta, options.CrossStrokeDivisor, options.Interpolator),
	}
	notifier := session.NotifierFunc(p.notify)

	var err error
	p.primary, err = session.New(session.StreamPrimary, opener, notifier,
		session.WithTimeProvider(options.TimeProvider))
	if err != nil {
		return nil, err
	}
	p.overlay, err = session.New(session.StreamOverlay, opener, notifier,
		session.WithTimeProvider(options.TimeProvider),
		session.WithLifecycleEvents(false))
	if err != nil {
		return nil, err
	}

	p.resetSettings()

	logrus.WithFields(logrus.Fields{
		"function":       "New",
		"brighten_delta": options.BrightenDelta,
		"stroke_divisor": options.CrossStrokeDivisor,
		"snapshot_limit": options.MaxSnapshotBytes,
		"custom_opener":  options.Opener != nil,
		"custom_clock":   options.TimeProvider != nil,
	}).Debug("Created player")

	return p, nil
}

// Initialize attaches the player to window. It hooks the window procedure
// and resets zoom, crosshair and overlay placement to their defaults.
func (p *Player) Initialize(window host.Window, onStarted, onStopped StreamCallback, onFailed FailureCallback) error {
	if window == nil {
		return fmt.Errorf("%w: window cannot be nil", ErrInvalidConfiguration)
	}
	if onStarted == nil || onStopped == nil || onFailed == nil {
		return fmt.Errorf("%w: all stream callbacks are required", ErrInvalidConfiguration)
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.bound.Load() != nil {
		return ErrAlreadyInitialized
	}

	b := &binding{
		window:    window,
		onStarted: onStarted,
		onStopped: onStopped,
		onFailed:  onFailed,
	}
	b.prev = window.SetProc(p.proc(b))
	p.resetSettings()
	p.bound.Store(b)

	logrus.WithFields(logrus.Fields{
		"function": "Initialize",
		"window":   window.Handle(),
	}).Info("Player attached to window")

	return nil
}

// Uninitialize stops both streams, discards pending window messages and
// restores the window's original procedure.
func (p *Player) Uninitialize() error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	b := p.bound.Load()
	if b == nil {
		return ErrNotInitialized
	}

	p.Stop()

	drained := 0
	for {
		if _, ok := b.window.PeekMessage(); !ok {
			break
		}
		drained++
	}
	b.window.SetProc(b.prev)
	p.bound.Store(nil)

	logrus.WithFields(logrus.Fields{
		"function": "Uninitialize",
		"window":   b.window.Handle(),
		"drained":  drained,
	}).Info("Player detached from window")

	return nil
}

// StartPlay starts the primary stream. If it is already playing the call
// does nothing.
func (p *Player) StartPlay(url string) error {
	return p.start(p.primary, url)
}

// StartPlayPiP starts the picture-in-picture stream. If it is already
// playing the call does nothing.
func (p *Player) StartPlayPiP(url string) error {
	return p.start(p.overlay, url)
}

func (p *Player) start(s *session.Session, url string) error {
	if p.bound.Load() == nil {
		return ErrNotInitialized
	}
	if url == "" {
		return fmt.Errorf("%w: empty url", ErrInvalidConfiguration)
	}
	s.Start(url)
	return nil
}

// Stop asks both streams to stop and waits for their decode loops to exit.
// It waits as long as a decoder stays blocked; use StopContext to bound it.
func (p *Player) Stop() {
	p.primary.RequestStop()
	p.overlay.RequestStop()
	p.primary.Join()
	p.overlay.Join()
}

// StopContext is Stop bounded by ctx.
func (p *Player) StopContext(ctx context.Context) error {
	p.primary.RequestStop()
	p.overlay.RequestStop()

	if err := p.primary.JoinContext(ctx); err != nil {
		return fmt.Errorf("%w: primary: %v", ErrJoinTimeout, err)
	}
	if err := p.overlay.JoinContext(ctx); err != nil {
		return fmt.Errorf("%w: overlay: %v", ErrJoinTimeout, err)
	}
	return nil
}

// GetCurrentFrame exports the current primary picture. The caller owns the
// snapshot and should Release it when done.
func (p *Player) GetCurrentFrame() (*video.Snapshot, error) {
	buf := p.primary.Buffer()
	if buf == nil {
		return nil, ErrNoFrame
	}
	return buf.Snapshot(p.options.MaxSnapshotBytes)
}

// GetFrameSize returns the primary picture size.
func (p *Player) GetFrameSize() (width, height int, err error) {
	buf := p.primary.Buffer()
	if buf == nil {
		return 0, 0, ErrNoFrame
	}
	width, height = buf.Dimensions()
	return width, height, nil
}

// SetupPiP places the overlay. A width of zero or less keeps the overlay's
// native size; a negative top or left centres it on that axis.
func (p *Player) SetupPiP(width, top, left int) {
	p.pipWidth.Store(int64(width))
	p.pipTop.Store(int64(top))
	p.pipLeft.Store(int64(left))
}

// SetupZoom sets the magnification. Values below 1 are clamped to 1.
func (p *Player) SetupZoom(zoom int) {
	p.zoom.Store(int64(max(zoom, 1)))
}

// SetupCross sets the crosshair half-length; 0 disables it.
func (p *Player) SetupCross(length int) {
	p.cross.Store(int64(length))
}

// Settings returns the current compositing configuration.
func (p *Player) Settings() Settings {
	return Settings{
		Zoom:        int(p.zoom.Load()),
		CrossLength: int(p.cross.Load()),
		PiP: video.Placement{
			Width: int(p.pipWidth.Load()),
			Top:   int(p.pipTop.Load()),
			Left:  int(p.pipLeft.Load()),
		},
	}
}

// OverlayLive reports whether the overlay stream is currently being shown.
func (p *Player) OverlayLive() bool {
	return p.overlay.Live()
}

// Stats returns decode statistics for stream.
func (p *Player) Stats(stream session.Stream) session.Stats {
	if stream == session.StreamOverlay {
		return p.overlay.Stats()
	}
	return p.primary.Stats()
}

func (p *Player) resetSettings() {
	p.SetupPiP(0, 0, 0)
	p.SetupZoom(1)
	p.SetupCross(0)
}
