// Package streamplayer plays live video into a host window.
//
// A Player owns two decode sessions: the primary stream, and an optional
// picture-in-picture stream composited over it. Each session decodes on its
// own goroutine into a frame buffer and asks the window to repaint; the
// window's dispatch thread composites the buffers (overlay, zoom crop,
// crosshair) onto its paint surface and invokes the stream callbacks.
//
// # Getting Started
//
//	player, err := streamplayer.New(streamplayer.NewOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	window := host.NewMemoryWindow(1280, 720)
//	go window.Run(ctx)
//
//	err = player.Initialize(window,
//	    func(s session.Stream) { log.Printf("%s started", s) },
//	    func(s session.Stream) { log.Printf("%s stopped", s) },
//	    func(s session.Stream, err error) { log.Printf("%s failed: %v", s, err) },
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer player.Uninitialize()
//
//	player.StartPlay("rtsp://camera.local/stream")
//	player.StartPlayPiP("pattern://320x180")
//	player.SetupPiP(320, 10, 10)
//	player.SetupZoom(2)
//	player.SetupCross(40)
//
// # Snapshots
//
// GetCurrentFrame returns a caller-owned copy of the primary frame: a
// BITMAPINFOHEADER followed by bottom-up BGR rows padded to four bytes.
// Snapshot.WriteBMP writes it as a .bmp file and Snapshot.Image decodes it.
//
// # Stopping
//
// Stopping is cooperative. A decode loop notices a stop request after its
// decoder returns the next picture, so Stop can block for as long as a
// decoder stays blocked. StopContext bounds the wait and reports
// ErrJoinTimeout.
package streamplayer
