// Package session runs the decode loops that feed frame buffers.
//
// A Session pulls pictures from a Decoder, ingests them into its own
// video.Buffer and posts events for the host's dispatch thread:
//
//	s, err := session.New(session.StreamPrimary, opener, notifier)
//	if err != nil {
//	    return err
//	}
//	s.Start("rtsp://camera/stream") // returns immediately
//	...
//	s.RequestStop()
//	s.Join()
//
// # Lifecycle
//
// Each run moves Idle → Running → Stopped|Failed and back to Idle once the
// goroutine has exited. Only one run per session exists at a time; Start while
// a run is active returns false and does nothing.
//
// # Events
//
// The decode goroutine never calls host code. It posts Event values to a
// Notifier, which is expected to queue them for the host thread:
//
//   - EventInvalidate after every ingested picture
//   - EventStarted once, after the first picture has been shown
//   - EventStopped on stop request or end of stream
//   - EventFailed on any decode error, including decoder panics
//
// Sessions created WithLifecycleEvents(false) post only EventInvalidate and
// expose liveness through Live instead.
//
// # Cancellation
//
// Stopping is cooperative: RequestStop sets a flag checked once per loop
// iteration. Join waits without limit, so a decoder that never returns from
// NextPicture keeps Join blocked. JoinContext bounds the wait.
package session
