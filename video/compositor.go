package video

import (
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Placement positions the picture-in-picture overlay inside the primary frame.
//
// Width is the rendered overlay width; zero or negative keeps the overlay's
// native size. The height always follows from the overlay's aspect ratio.
// A negative Top or Left centres the overlay along that axis.
type Placement struct {
	Width int
	Top   int
	Left  int
}

// Params carries the per-paint compositing configuration.
type Params struct {
	// Zoom is the integer magnification; values below 2 show the full frame.
	Zoom int
	// CrossLength is the crosshair half-length in frame pixels; 0 disables it.
	CrossLength int
	// Overlay positions the overlay buffer when one is supplied.
	Overlay Placement
}

// Compositor turns a frame buffer plus overlay, zoom and crosshair settings
// into pixels on a paint surface.
//
// The frame buffer itself is never modified: every call works on a private
// copy taken under the buffer's read lock, so repeated paints of the same
// picture are identical and snapshots never contain overlay artwork. The
// native player this replaces drew the inset and crosshair straight into the
// buffer's storage, so its crosshair brightened again on every repaint.
type Compositor struct {
	brightenDelta byte
	strokeDivisor int
	interpolator  draw.Interpolator

	pool sync.Pool
}

// NewCompositor creates a compositor with the default crosshair style and
// bilinear stretching.
func NewCompositor() *Compositor {
	return NewCompositorWithSettings(DefaultBrightenDelta, DefaultStrokeDivisor, draw.ApproxBiLinear)
}

// NewCompositorWithSettings creates a compositor with explicit settings.
// A nil interpolator selects draw.ApproxBiLinear.
func NewCompositorWithSettings(brightenDelta byte, strokeDivisor int, interpolator draw.Interpolator) *Compositor {
	if strokeDivisor < 1 {
		strokeDivisor = DefaultStrokeDivisor
	}
	if interpolator == nil {
		interpolator = draw.ApproxBiLinear
	}
	return &Compositor{
		brightenDelta: brightenDelta,
		strokeDivisor: strokeDivisor,
		interpolator:  interpolator,
	}
}

var defaultCompositor = NewCompositor()

// Composite draws b onto dst using the default compositor.
func (b *Buffer) Composite(dst draw.Image, params Params, overlay *Buffer) error {
	return defaultCompositor.Composite(dst, b, overlay, params)
}

// ZoomRect returns the source rectangle shown at the given zoom: the full
// frame for zoom <= 1, otherwise a centred (width/zoom) x (height/zoom) crop.
func ZoomRect(width, height, zoom int) image.Rectangle {
	if zoom <= 1 {
		return image.Rect(0, 0, width, height)
	}
	dx := max(width/zoom, 1)
	dy := max(height/zoom, 1)
	x := (width - dx) / 2
	y := (height - dy) / 2
	return image.Rect(x, y, x+dx, y+dy)
}

// OverlayRect returns where an overlay of overlayW x overlayH pixels lands
// inside a primaryW x primaryH frame for placement p.
func OverlayRect(primaryW, primaryH, overlayW, overlayH int, p Placement) image.Rectangle {
	w, h := overlayW, overlayH
	if p.Width > 0 && overlayW > 0 {
		w = p.Width
		h = p.Width * overlayH / overlayW
	}

	left, top := p.Left, p.Top
	if left < 0 {
		left = (primaryW - w) / 2
	}
	if top < 0 {
		top = (primaryH - h) / 2
	}
	return image.Rect(left, top, left+w, top+h)
}

// Composite blends overlay (optional) into a copy of primary, applies the zoom
// crop and crosshair, and stretches the result over all of dst.
//
// The primary buffer is read-locked before the overlay buffer, always in that
// order. A destination with zero width or height is a no-op.
func (c *Compositor) Composite(dst draw.Image, primary, overlay *Buffer, params Params) error {
	bounds := dst.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil
	}
	if primary == nil {
		return nil
	}

	work := c.capture(primary, overlay, params.Overlay)
	defer c.pool.Put(work)

	zoom := max(params.Zoom, 1)
	src := ZoomRect(work.width, work.height, zoom)

	if half, stroke := CrosshairExtent(params.CrossLength, zoom, c.strokeDivisor); half > 0 {
		drawCrosshair(work, half, stroke, c.brightenDelta)
	}

	img := work.toRGBA(src, nil)
	c.interpolator.Scale(dst, bounds, img, img.Bounds(), draw.Src, nil)

	logrus.WithFields(logrus.Fields{
		"function":    "Compositor.Composite",
		"frame_size":  image.Pt(work.width, work.height),
		"source_rect": src,
		"target_rect": bounds,
		"overlay":     overlay != nil,
	}).Trace("Composited frame")

	return nil
}

// capture copies primary into a pooled canvas and blits overlay onto it,
// holding the buffers' read locks only for that.
func (c *Compositor) capture(primary, overlay *Buffer, placement Placement) *canvas {
	primary.mu.RLock()
	defer primary.mu.RUnlock()
	work := c.copyOf(primary)

	if overlay != nil && overlay != primary {
		overlay.mu.RLock()
		defer overlay.mu.RUnlock()
		rect := OverlayRect(work.width, work.height, overlay.width, overlay.height, placement)
		scaleInto(work, rect, overlay.view())
	}
	return work
}

// copyOf copies the pixels of b into a pooled canvas. The caller holds b.mu.
func (c *Compositor) copyOf(b *Buffer) *canvas {
	work, _ := c.pool.Get().(*canvas)
	if work == nil {
		work = &canvas{}
	}
	size := len(b.pixels)
	if cap(work.pix) < size {
		work.pix = make([]byte, size)
	}
	work.pix = work.pix[:size]
	work.width = b.width
	work.height = b.height
	work.stride = b.stride
	copy(work.pix, b.pixels)
	return work
}
