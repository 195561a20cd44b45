package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	streamplayer "github.com/opd-ai/streamplayer"
	"github.com/opd-ai/streamplayer/host"
	"github.com/opd-ai/streamplayer/session"
)

var errUnknownWindow = errors.New("unknown window handle")

// Window and player management for the C API. The library exposes one
// player per process, like the native DLL it replaces; windows are addressed
// by handle.
var (
	windows   = make(map[uintptr]*host.MemoryWindow)
	windowsMu sync.RWMutex

	playerOnce sync.Once
	player     *streamplayer.Player
	playerErr  error

	boundMu     sync.Mutex
	boundWindow uintptr
)

func init() {
	if lvl, err := logrus.ParseLevel(os.Getenv("STREAMPLAYER_LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}
}

// streamCallbacks are the Go forms of the C stream callbacks.
type streamCallbacks struct {
	started func(stream uint32)
	stopped func(stream uint32)
	failed  func(stream uint32)
}

func getPlayer() (*streamplayer.Player, error) {
	playerOnce.Do(func() {
		player, playerErr = streamplayer.New(streamplayer.NewOptions())
	})
	return player, playerErr
}

// status collapses err into the C status convention: 0 success, 1 failure.
func status(function string, err error) int32 {
	if err == nil {
		return 0
	}
	logrus.WithFields(logrus.Fields{
		"function": function,
		"error":    err.Error(),
	}).Debug("C API call failed")
	return 1
}

func newWindow(width, height int) *host.MemoryWindow {
	w := host.NewMemoryWindow(width, height)

	windowsMu.Lock()
	defer windowsMu.Unlock()
	windows[uintptr(w.Handle())] = w
	return w
}

func lookupWindow(handle uintptr) (*host.MemoryWindow, error) {
	windowsMu.RLock()
	defer windowsMu.RUnlock()
	w, ok := windows[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errUnknownWindow, handle)
	}
	return w, nil
}

// freeWindow detaches the player if it is bound to the window, then forgets it.
func freeWindow(handle uintptr) error {
	w, err := lookupWindow(handle)
	if err != nil {
		return err
	}

	boundMu.Lock()
	bound := boundWindow == handle
	boundMu.Unlock()
	if bound {
		if err := uninitialize(); err != nil {
			return err
		}
	}

	w.Close()
	windowsMu.Lock()
	delete(windows, handle)
	windowsMu.Unlock()
	return nil
}

func dispatchWindow(handle uintptr) (int, error) {
	w, err := lookupWindow(handle)
	if err != nil {
		return 0, err
	}
	return w.DispatchPending(), nil
}

func resizeWindow(handle uintptr, width, height int) error {
	w, err := lookupWindow(handle)
	if err != nil {
		return err
	}
	w.Resize(width, height)
	return nil
}

func initialize(handle uintptr, cbs streamCallbacks) error {
	w, err := lookupWindow(handle)
	if err != nil {
		return err
	}
	p, err := getPlayer()
	if err != nil {
		return err
	}

	var onStarted, onStopped streamplayer.StreamCallback
	var onFailed streamplayer.FailureCallback
	if cbs.started != nil {
		onStarted = func(s session.Stream) { cbs.started(uint32(s)) }
	}
	if cbs.stopped != nil {
		onStopped = func(s session.Stream) { cbs.stopped(uint32(s)) }
	}
	if cbs.failed != nil {
		onFailed = func(s session.Stream, _ error) { cbs.failed(uint32(s)) }
	}

	boundMu.Lock()
	defer boundMu.Unlock()
	if err := p.Initialize(w, onStarted, onStopped, onFailed); err != nil {
		return err
	}
	boundWindow = handle
	return nil
}

func uninitialize() error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	boundMu.Lock()
	defer boundMu.Unlock()
	if err := p.Uninitialize(); err != nil {
		return err
	}
	boundWindow = 0
	return nil
}

func startPlay(url string) error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	return p.StartPlay(url)
}

func startPlayPiP(url string) error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	return p.StartPlayPiP(url)
}

// currentFrame returns a copy of the current snapshot bytes.
func currentFrame() ([]byte, error) {
	p, err := getPlayer()
	if err != nil {
		return nil, err
	}
	snap, err := p.GetCurrentFrame()
	if err != nil {
		return nil, err
	}
	defer snap.Release()
	return append([]byte(nil), snap.Bytes()...), nil
}

func frameSize() (width, height uint32, err error) {
	p, err := getPlayer()
	if err != nil {
		return 0, 0, err
	}
	w, h, err := p.GetFrameSize()
	if err != nil {
		return 0, 0, err
	}
	return uint32(w), uint32(h), nil
}

func setupPiP(width, top, left int32) error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	p.SetupPiP(int(width), int(top), int(left))
	return nil
}

func setupZoom(zoom int32) error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	p.SetupZoom(int(zoom))
	return nil
}

func setupCross(length int32) error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	p.SetupCross(int(length))
	return nil
}

func stop() error {
	p, err := getPlayer()
	if err != nil {
		return err
	}
	p.Stop()
	return nil
}
