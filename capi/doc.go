// Package main provides C API bindings for the stream player, so that
// native hosts and managed-language shims can drive it as a shared library.
//
// # Build Instructions
//
// To build as a C shared library:
//
//	go build -buildmode=c-shared -o libstreamplayer.so ./capi/
//
// This generates libstreamplayer.so and libstreamplayer.h with the exported
// declarations. streamplayer.h in this directory declares the callback types.
//
// # C API Usage
//
//	uintptr_t win = streamplayer_window_new(1280, 720, on_paint, ctx);
//	if (Initialize(win, on_started, on_stopped, on_failed, ctx) != 0) {
//	    fprintf(stderr, "Initialize failed\n");
//	    return 1;
//	}
//
//	StartPlay("rtsp://camera.local/stream");
//	int32_t zoom = 2;
//	SetupZoom(&zoom);
//
//	while (running) {
//	    streamplayer_window_dispatch(win);  // paints and callbacks run here
//	    usleep(10000);
//	}
//
//	uint8_t *bmp; size_t len;
//	if (GetCurrentFrame(&bmp, &len) == 0) {
//	    save(bmp, len);
//	    ReleaseFrame(bmp);
//	}
//
//	Uninitialize();
//	streamplayer_window_free(win);
//
// # Error Handling
//
// Every call returns 0 on success and 1 on failure; the cause is logged at
// debug level (set STREAMPLAYER_LOG_LEVEL=debug to see it).
//
// # Threading
//
// Stream and paint callbacks run only inside streamplayer_window_dispatch,
// on the thread that calls it. Stop and Uninitialize block until the decode
// loops exit.
//
// # Files
//
//   - exports.go: exported C functions
//   - callbacks.go: C function pointer trampolines
//   - bridge.go: window registry and the process-wide player
package main

func main() {} // Required for c-shared build mode
