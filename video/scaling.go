package video

import (
	"image"

	"github.com/opd-ai/streamplayer/limits"
)

// canvas is a bottom-up BGR24 pixel grid addressed with top-down coordinates.
// It is the working representation shared by the compositing stages.
type canvas struct {
	width  int
	height int
	stride int
	pix    []byte
}

func (c *canvas) offset(x, y int) int {
	return (c.height-1-y)*c.stride + x*limits.BytesPerPixel
}

// view exposes the buffer storage as a canvas. The caller must hold b.mu.
func (b *Buffer) view() *canvas {
	return &canvas{width: b.width, height: b.height, stride: b.stride, pix: b.pixels}
}

// scaleInto resamples the whole of src into rect of dst using bilinear
// interpolation on each of the three channels. Parts of rect that fall
// outside dst are clipped.
func scaleInto(dst *canvas, rect image.Rectangle, src *canvas) {
	dstW, dstH := rect.Dx(), rect.Dy()
	if dstW <= 0 || dstH <= 0 || src.width <= 0 || src.height <= 0 {
		return
	}

	clipped := rect.Intersect(image.Rect(0, 0, dst.width, dst.height))
	if clipped.Empty() {
		return
	}

	xRatio := float64(src.width) / float64(dstW)
	yRatio := float64(src.height) / float64(dstH)

	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		srcY := float64(y-rect.Min.Y) * yRatio
		y1 := int(srcY)
		y2 := y1 + 1
		if y2 >= src.height {
			y2 = src.height - 1
		}
		fy := srcY - float64(y1)

		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			srcX := float64(x-rect.Min.X) * xRatio
			x1 := int(srcX)
			x2 := x1 + 1
			if x2 >= src.width {
				x2 = src.width - 1
			}
			fx := srcX - float64(x1)

			o11 := src.offset(x1, y1)
			o12 := src.offset(x2, y1)
			o21 := src.offset(x1, y2)
			o22 := src.offset(x2, y2)
			out := dst.offset(x, y)

			for ch := 0; ch < limits.BytesPerPixel; ch++ {
				top := float64(src.pix[o11+ch])*(1-fx) + float64(src.pix[o12+ch])*fx
				bottom := float64(src.pix[o21+ch])*(1-fx) + float64(src.pix[o22+ch])*fx
				dst.pix[out+ch] = byte(top*(1-fy) + bottom*fy + 0.5)
			}
		}
	}
}

// toRGBA converts rect of c into a top-down RGBA image for the final stretch.
func (c *canvas) toRGBA(rect image.Rectangle, img *image.RGBA) *image.RGBA {
	bounds := image.Rect(0, 0, rect.Dx(), rect.Dy())
	if img == nil || img.Bounds() != bounds {
		img = image.NewRGBA(bounds)
	}

	for y := 0; y < rect.Dy(); y++ {
		src := c.pix[c.offset(rect.Min.X, rect.Min.Y+y):]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < rect.Dx(); x++ {
			dst[x*4] = src[x*3+2]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3]
			dst[x*4+3] = 0xFF
		}
	}
	return img
}
