package main

/*
#include "streamplayer.h"

static inline void call_stream_cb(streamplayer_stream_cb cb, uint32_t stream, void *user_data) {
    if (cb != NULL) {
        cb(stream, user_data);
    }
}

static inline void call_paint_cb(streamplayer_paint_cb cb, uintptr_t window, const uint8_t *rgba,
                                 int32_t width, int32_t height, int32_t stride, void *user_data) {
    if (cb != NULL) {
        cb(window, rgba, width, height, stride, user_data);
    }
}
*/
import "C"

import (
	"image"
	"unsafe"
)

// streamCallback wraps a C stream callback. A NULL callback yields nil.
func streamCallback(cb C.streamplayer_stream_cb, userData unsafe.Pointer) func(stream uint32) {
	if cb == nil {
		return nil
	}
	return func(stream uint32) {
		C.call_stream_cb(cb, C.uint32_t(stream), userData)
	}
}

// paintCallback wraps a C paint callback. A NULL callback yields nil.
func paintCallback(cb C.streamplayer_paint_cb, handle uintptr, userData unsafe.Pointer) func(surface *image.RGBA) {
	if cb == nil {
		return nil
	}
	return func(surface *image.RGBA) {
		var pix *C.uint8_t
		if len(surface.Pix) > 0 {
			pix = (*C.uint8_t)(unsafe.Pointer(&surface.Pix[0]))
		}
		C.call_paint_cb(cb, C.uintptr_t(handle), pix,
			C.int32_t(surface.Rect.Dx()), C.int32_t(surface.Rect.Dy()),
			C.int32_t(surface.Stride), userData)
	}
}
