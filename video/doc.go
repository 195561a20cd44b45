// Package video holds decoded pictures and turns them into painted pixels.
//
// # Pipeline
//
//	Decoder Picture → Buffer.Update → Compositor.Composite → paint surface
//	                               ↘ Buffer.Snapshot → caller-owned DIB
//
// # Frame Buffers
//
// A Buffer owns one picture in display-ready form: 24-bit BGR rows stored
// bottom-up with each row padded to a 4-byte boundary. Pictures in BGR24,
// RGB24 or YUV420P are normalised on ingest:
//
//	buf, err := video.NewBuffer(pic.Width, pic.Height, pic)
//	if err != nil {
//	    return fmt.Errorf("create frame buffer: %w", err)
//	}
//
//	// Later pictures of the same size
//	err = buf.Update(next)
//
// # Compositing
//
// The Compositor blends an optional picture-in-picture overlay, crops for
// zoom, brightens a crosshair and stretches the result onto any draw.Image
// using a golang.org/x/image/draw interpolator:
//
//	c := video.NewCompositor()
//	err := c.Composite(surface, primary, overlay, video.Params{
//	    Zoom:        2,
//	    CrossLength: 40,
//	    Overlay:     video.Placement{Width: 160, Top: -1, Left: -1},
//	})
//
// # Snapshots
//
// Snapshot exports a BITMAPINFOHEADER followed by the stored rows. The
// caller owns the result and calls Release when done. WriteBMP prefixes a
// file header so the output is a valid .bmp stream.
//
// # Thread Safety
//
// Buffer is safe for concurrent use: Update excludes Composite and Snapshot.
// When an overlay is composited its lock is always taken after the primary
// buffer's lock. Compositor is safe for concurrent use.
package video
