package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamplayer/video"
)

// Session runs one decode loop at a time for one stream.
//
// A run moves Idle → Running → Stopped|Failed → Idle. Start is asynchronous:
// decode failures never reach its caller, they end the run and post an
// EventFailed instead. Stopping is cooperative. RequestStop sets a flag the
// loop checks once per picture, so a decoder blocked inside NextPicture delays
// the stop until it returns.
type Session struct {
	stream           Stream
	opener           Opener
	notifier         Notifier
	forwardLifecycle bool
	timeProvider     TimeProvider

	// runToken is held for the whole lifetime of a run.
	runToken      sync.Mutex
	stopRequested atomic.Bool
	live          atomic.Bool
	state         atomic.Int32
	buffer        atomic.Pointer[video.Buffer]

	mu    sync.Mutex
	done  chan struct{}
	stats Stats
}

// Option configures a Session.
type Option func(*Session)

// WithTimeProvider sets the time source used for inter-frame sleeps.
func WithTimeProvider(tp TimeProvider) Option {
	return func(s *Session) { s.timeProvider = tp }
}

// WithLifecycleEvents controls whether Started, Stopped and Failed are posted
// to the notifier. Invalidate events are always posted. When disabled the
// session only tracks liveness through Live.
func WithLifecycleEvents(enabled bool) Option {
	return func(s *Session) { s.forwardLifecycle = enabled }
}

// New creates an idle session for stream.
func New(stream Stream, opener Opener, notifier Notifier, opts ...Option) (*Session, error) {
	if opener == nil {
		return nil, errors.New("decoder opener cannot be nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}

	s := &Session{
		stream:           stream,
		opener:           opener,
		notifier:         notifier,
		forwardLifecycle: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.timeProvider = getTimeProvider(s.timeProvider)
	s.stats.Stream = stream

	logrus.WithFields(logrus.Fields{
		"function":         "session.New",
		"stream":           stream,
		"lifecycle_events": s.forwardLifecycle,
	}).Debug("Created playback session")

	return s, nil
}

// Stream returns the stream this session decodes.
func (s *Session) Stream() Stream { return s.stream }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Live reports whether the current run has displayed its first picture and
// has not yet ended.
func (s *Session) Live() bool { return s.live.Load() }

// Buffer returns the frame buffer of the most recent run, or nil before the
// first picture of a run has been decoded.
func (s *Session) Buffer() *video.Buffer { return s.buffer.Load() }

// Stats returns a copy of the session statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.State = s.State()
	return st
}

// Start begins decoding sourceURL on a new goroutine and returns true. If a
// run is already in progress it does nothing and returns false.
func (s *Session) Start(sourceURL string) bool {
	if !s.runToken.TryLock() {
		logrus.WithFields(logrus.Fields{
			"function": "Session.Start",
			"stream":   s.stream,
			"url":      redact(sourceURL),
		}).Debug("Run already in progress, skipping start")
		return false
	}

	s.stopRequested.Store(false)
	s.live.Store(false)
	s.buffer.Store(nil)

	runID := uuid.NewString()
	done := make(chan struct{})

	s.mu.Lock()
	s.done = done
	s.stats.Runs++
	s.stats.RunID = runID
	s.mu.Unlock()

	s.setState(StateRunning)

	logrus.WithFields(logrus.Fields{
		"function": "Session.Start",
		"stream":   s.stream,
		"run_id":   runID,
		"url":      redact(sourceURL),
	}).Info("Starting decode run")

	go s.run(sourceURL, runID, done)
	return true
}

// RequestStop asks the running loop to exit at its next iteration. It never
// blocks and may be called any number of times from any goroutine.
func (s *Session) RequestStop() {
	s.stopRequested.Store(true)
}

// Join blocks until the current run, if any, has fully exited.
func (s *Session) Join() {
	if done := s.currentDone(); done != nil {
		<-done
	}
}

// JoinContext is Join bounded by ctx. It returns ctx.Err() if the run is
// still active when ctx ends.
func (s *Session) JoinContext(ctx context.Context) error {
	done := s.currentDone()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) currentDone() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) run(sourceURL, runID string, done chan struct{}) {
	// The token is released before done closes so that Start succeeds as
	// soon as Join returns.
	defer func() {
		s.live.Store(false)
		s.setState(StateIdle)
		s.runToken.Unlock()
		close(done)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logrus.WithFields(logrus.Fields{
		"function": "Session.run",
		"stream":   s.stream,
		"run_id":   runID,
	})

	if err := s.play(ctx, sourceURL, runID); err != nil {
		s.setState(StateFailed)
		s.mu.Lock()
		s.stats.Failures++
		s.stats.LastError = err
		s.mu.Unlock()

		log.WithField("error", err.Error()).Warn("Decode run failed")
		s.post(Event{Kind: EventFailed, Stream: s.stream, RunID: runID, Err: err})
		return
	}

	s.setState(StateStopped)
	log.Info("Decode run stopped")
	s.post(Event{Kind: EventStopped, Stream: s.stream, RunID: runID})
}

// play runs the decode loop. A nil result means the run stopped on request or
// at end of stream.
func (s *Session) play(ctx context.Context, sourceURL, runID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrDecode, r)
		}
	}()

	dec, err := s.opener.Open(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrDecode, redact(sourceURL), err)
	}
	defer func() {
		if cerr := dec.Close(); cerr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Session.play",
				"stream":   s.stream,
				"run_id":   runID,
				"error":    cerr.Error(),
			}).Debug("Decoder close failed")
		}
	}()

	firstFrame := true
	for {
		pic, err := dec.NextPicture()
		if s.stopRequested.Load() || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}

		if err := s.ingest(pic); err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}

		s.notifier.Notify(Event{Kind: EventInvalidate, Stream: s.stream, RunID: runID})

		sleep(s.timeProvider, dec.InterFrameDelay())

		if firstFrame {
			firstFrame = false
			s.live.Store(true)
			logrus.WithFields(logrus.Fields{
				"function": "Session.play",
				"stream":   s.stream,
				"run_id":   runID,
				"width":    pic.Width,
				"height":   pic.Height,
			}).Info("First frame displayed")
			s.post(Event{Kind: EventStarted, Stream: s.stream, RunID: runID})
		}
	}
}

// ingest copies pic into the owned frame buffer, creating it on the first
// picture and replacing it when the picture size changes.
func (s *Session) ingest(pic *video.Picture) error {
	if pic == nil {
		return fmt.Errorf("%w: decoder returned no picture", video.ErrInvalidPicture)
	}

	buf := s.buffer.Load()
	err := video.ErrDimensionMismatch
	if buf != nil {
		err = buf.Update(pic)
	}
	if errors.Is(err, video.ErrDimensionMismatch) {
		next, nerr := video.NewBuffer(pic.Width, pic.Height, pic)
		if nerr != nil {
			return nerr
		}
		if buf != nil {
			logrus.WithFields(logrus.Fields{
				"function":   "Session.ingest",
				"stream":     s.stream,
				"old_width":  buf.Width(),
				"old_height": buf.Height(),
				"width":      pic.Width,
				"height":     pic.Height,
			}).Info("Picture size changed, replacing frame buffer")
		}
		s.buffer.Store(next)
		err = nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.stats.FramesDecoded++
	s.stats.LastFrameAt = s.timeProvider.Now()
	s.mu.Unlock()
	return nil
}

// post delivers a lifecycle event if this session forwards them.
func (s *Session) post(ev Event) {
	if !s.forwardLifecycle {
		return
	}
	s.notifier.Notify(ev)
}

// redact strips credentials from a source URL for logging.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	return u.Redacted()
}
