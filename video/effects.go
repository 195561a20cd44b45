package video

import "image"

// DefaultBrightenDelta is the per-channel amount added to crosshair pixels.
const DefaultBrightenDelta = 0x6F

// DefaultStrokeDivisor sets the crosshair stroke half-width to length/8.
const DefaultStrokeDivisor = 8

// brighten adds delta to each channel of the pixel at off, saturating at 0xFF.
func brighten(pix []byte, off int, delta byte) {
	for ch := 0; ch < 3; ch++ {
		if pix[off+ch] < 0xFF-delta {
			pix[off+ch] += delta
		} else {
			pix[off+ch] = 0xFF
		}
	}
}

// CrosshairExtent returns the effective half-length and stroke half-width of
// a crosshair of the given half-length drawn in a view zoomed by zoom.
// A zero half-length means nothing is drawn.
func CrosshairExtent(length, zoom, strokeDivisor int) (half, stroke int) {
	if length <= 0 {
		return 0, 0
	}
	if zoom < 1 {
		zoom = 1
	}
	if strokeDivisor < 1 {
		strokeDivisor = DefaultStrokeDivisor
	}

	half = length / zoom
	if half == 0 {
		return 0, 0
	}
	stroke = half / strokeDivisor
	if stroke < 1 {
		stroke = 1
	}
	return half, stroke
}

// CrosshairRects returns the horizontal and vertical bars of a crosshair
// centred in a width x height frame. The bars do not overlap so every pixel
// is brightened once.
func CrosshairRects(width, height, half, stroke int) []image.Rectangle {
	if half <= 0 {
		return nil
	}
	cx, cy := width/2, height/2
	bounds := image.Rect(0, 0, width, height)

	rects := []image.Rectangle{
		image.Rect(cx-half, cy-stroke, cx+half+1, cy+stroke+1),
		image.Rect(cx-stroke, cy-half, cx+stroke+1, cy-stroke),
		image.Rect(cx-stroke, cy+stroke+1, cx+stroke+1, cy+half+1),
	}

	out := rects[:0]
	for _, r := range rects {
		if r = r.Intersect(bounds); !r.Empty() {
			out = append(out, r)
		}
	}
	return out
}

// drawCrosshair brightens the crosshair bars on c.
func drawCrosshair(c *canvas, half, stroke int, delta byte) {
	for _, r := range CrosshairRects(c.width, c.height, half, stroke) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				brighten(c.pix, c.offset(x, y), delta)
			}
		}
	}
}
