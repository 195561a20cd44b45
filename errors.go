package streamplayer

import "errors"

var (
	// ErrInvalidConfiguration indicates missing or invalid initialization inputs.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotInitialized indicates a call that needs Initialize first.
	ErrNotInitialized = errors.New("player not initialized")

	// ErrAlreadyInitialized indicates a second Initialize without Uninitialize.
	ErrAlreadyInitialized = errors.New("player already initialized")

	// ErrNoFrame indicates that the primary stream has not produced a picture.
	ErrNoFrame = errors.New("no frame")

	// ErrJoinTimeout indicates a decode loop that did not exit in time.
	ErrJoinTimeout = errors.New("decode loop did not exit in time")
)
