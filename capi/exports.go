package main

/*
#include <stdlib.h>
#include <string.h>
#include "streamplayer.h"
*/
import "C"

import (
	"errors"
	"unsafe"
)

var errNullArgument = errors.New("null argument")

// streamplayer_window_new creates a headless window and returns its handle.
// paint may be NULL.
//
//export streamplayer_window_new
func streamplayer_window_new(width, height C.int32_t, paint C.streamplayer_paint_cb, userData unsafe.Pointer) C.uintptr_t {
	w := newWindow(int(width), int(height))
	handle := uintptr(w.Handle())
	if fn := paintCallback(paint, handle, userData); fn != nil {
		w.OnPaint(fn)
	}
	return C.uintptr_t(handle)
}

//export streamplayer_window_free
func streamplayer_window_free(window C.uintptr_t) C.int32_t {
	return C.int32_t(status("streamplayer_window_free", freeWindow(uintptr(window))))
}

// streamplayer_window_dispatch runs pending window messages on the calling
// thread, which becomes the thread callbacks are invoked on. It returns the
// number of messages handled, or -1 for an unknown window.
//
//export streamplayer_window_dispatch
func streamplayer_window_dispatch(window C.uintptr_t) C.int32_t {
	n, err := dispatchWindow(uintptr(window))
	if err != nil {
		status("streamplayer_window_dispatch", err)
		return -1
	}
	return C.int32_t(n)
}

//export streamplayer_window_resize
func streamplayer_window_resize(window C.uintptr_t, width, height C.int32_t) C.int32_t {
	return C.int32_t(status("streamplayer_window_resize", resizeWindow(uintptr(window), int(width), int(height))))
}

//export Initialize
func Initialize(window C.uintptr_t, started, stopped, failed C.streamplayer_stream_cb, userData unsafe.Pointer) C.int32_t {
	cbs := streamCallbacks{
		started: streamCallback(started, userData),
		stopped: streamCallback(stopped, userData),
		failed:  streamCallback(failed, userData),
	}
	return C.int32_t(status("Initialize", initialize(uintptr(window), cbs)))
}

//export StartPlay
func StartPlay(url *C.char) C.int32_t {
	if url == nil {
		return C.int32_t(status("StartPlay", errNullArgument))
	}
	return C.int32_t(status("StartPlay", startPlay(C.GoString(url))))
}

//export StartPlayPiP
func StartPlayPiP(url *C.char) C.int32_t {
	if url == nil {
		return C.int32_t(status("StartPlayPiP", errNullArgument))
	}
	return C.int32_t(status("StartPlayPiP", startPlayPiP(C.GoString(url))))
}

// GetCurrentFrame stores a malloc'd snapshot in *bmp and its length in
// *size (size may be NULL). Release it with ReleaseFrame.
//
//export GetCurrentFrame
func GetCurrentFrame(bmp **C.uint8_t, size *C.size_t) C.int32_t {
	if bmp == nil {
		return C.int32_t(status("GetCurrentFrame", errNullArgument))
	}
	data, err := currentFrame()
	if err != nil {
		return C.int32_t(status("GetCurrentFrame", err))
	}

	buf := C.malloc(C.size_t(len(data)))
	if buf == nil {
		return C.int32_t(status("GetCurrentFrame", errors.New("malloc failed")))
	}
	C.memcpy(buf, unsafe.Pointer(&data[0]), C.size_t(len(data)))

	*bmp = (*C.uint8_t)(buf)
	if size != nil {
		*size = C.size_t(len(data))
	}
	return 0
}

//export ReleaseFrame
func ReleaseFrame(bmp *C.uint8_t) {
	C.free(unsafe.Pointer(bmp))
}

//export GetFrameSize
func GetFrameSize(width, height *C.uint32_t) C.int32_t {
	if width == nil || height == nil {
		return C.int32_t(status("GetFrameSize", errNullArgument))
	}
	w, h, err := frameSize()
	if err != nil {
		return C.int32_t(status("GetFrameSize", err))
	}
	*width, *height = C.uint32_t(w), C.uint32_t(h)
	return 0
}

//export SetupPiP
func SetupPiP(width, top, left *C.int32_t) C.int32_t {
	if width == nil || top == nil || left == nil {
		return C.int32_t(status("SetupPiP", errNullArgument))
	}
	return C.int32_t(status("SetupPiP", setupPiP(int32(*width), int32(*top), int32(*left))))
}

//export SetupZoom
func SetupZoom(zoom *C.int32_t) C.int32_t {
	if zoom == nil {
		return C.int32_t(status("SetupZoom", errNullArgument))
	}
	return C.int32_t(status("SetupZoom", setupZoom(int32(*zoom))))
}

//export SetupCross
func SetupCross(length *C.int32_t) C.int32_t {
	if length == nil {
		return C.int32_t(status("SetupCross", errNullArgument))
	}
	return C.int32_t(status("SetupCross", setupCross(int32(*length))))
}

//export Stop
func Stop() C.int32_t {
	return C.int32_t(status("Stop", stop()))
}

//export Uninitialize
func Uninitialize() C.int32_t {
	return C.int32_t(status("Uninitialize", uninitialize()))
}
