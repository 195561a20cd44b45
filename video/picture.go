package video

import (
	"errors"
	"fmt"

	"github.com/opd-ai/streamplayer/limits"
)

// PixelFormat identifies the memory layout of a decoded Picture.
type PixelFormat int

const (
	// PixelFormatBGR24 is packed 8-bit blue, green, red. This is the
	// display-native layout and is copied without conversion.
	PixelFormatBGR24 PixelFormat = iota
	// PixelFormatRGB24 is packed 8-bit red, green, blue.
	PixelFormatRGB24
	// PixelFormatYUV420P is planar YUV with 2x2 subsampled chroma (BT.601).
	PixelFormatYUV420P
)

// String returns the ffmpeg name of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatBGR24:
		return "bgr24"
	case PixelFormatRGB24:
		return "rgb24"
	case PixelFormatYUV420P:
		return "yuv420p"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// ErrInvalidPicture indicates a picture whose planes do not match its geometry.
var ErrInvalidPicture = errors.New("invalid picture")

// Picture is one decoded raw video frame as produced by a decoder.
//
// Rows are stored top to bottom. Packed formats use Data[0] and LineSize[0]
// only; YUV420P uses all three planes. LineSize may exceed the meaningful
// row length when the decoder aligns rows.
type Picture struct {
	Width    int
	Height   int
	Format   PixelFormat
	Data     [3][]byte
	LineSize [3]int
}

// NewBGRPicture allocates a tightly packed BGR24 picture.
func NewBGRPicture(width, height int) *Picture {
	rowBytes := limits.RowBytes(width)
	return &Picture{
		Width:    width,
		Height:   height,
		Format:   PixelFormatBGR24,
		Data:     [3][]byte{make([]byte, rowBytes*height)},
		LineSize: [3]int{rowBytes},
	}
}

// Validate checks that every plane is large enough for the picture geometry.
func (p *Picture) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil picture", ErrInvalidPicture)
	}
	if err := limits.ValidateFrameDimensions(p.Width, p.Height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPicture, err)
	}

	switch p.Format {
	case PixelFormatBGR24, PixelFormatRGB24:
		return validatePlane(0, p.Data[0], p.LineSize[0], limits.RowBytes(p.Width), p.Height)
	case PixelFormatYUV420P:
		chromaWidth := (p.Width + 1) / 2
		chromaHeight := (p.Height + 1) / 2
		if err := validatePlane(0, p.Data[0], p.LineSize[0], p.Width, p.Height); err != nil {
			return err
		}
		if err := validatePlane(1, p.Data[1], p.LineSize[1], chromaWidth, chromaHeight); err != nil {
			return err
		}
		return validatePlane(2, p.Data[2], p.LineSize[2], chromaWidth, chromaHeight)
	default:
		return fmt.Errorf("%w: unsupported pixel format %s", ErrInvalidPicture, p.Format)
	}
}

func validatePlane(index int, data []byte, lineSize, rowBytes, rows int) error {
	if lineSize < rowBytes {
		return fmt.Errorf("%w: plane %d line size %d smaller than row length %d",
			ErrInvalidPicture, index, lineSize, rowBytes)
	}
	if need := (rows-1)*lineSize + rowBytes; len(data) < need {
		return fmt.Errorf("%w: plane %d holds %d bytes, need %d", ErrInvalidPicture, index, len(data), need)
	}
	return nil
}

// writeRowBGR converts source row y (counted from the top) into packed BGR24
// and writes exactly Width*3 bytes to dst.
func (p *Picture) writeRowBGR(y int, dst []byte) {
	rowBytes := limits.RowBytes(p.Width)

	switch p.Format {
	case PixelFormatBGR24:
		off := y * p.LineSize[0]
		copy(dst[:rowBytes], p.Data[0][off:off+rowBytes])

	case PixelFormatRGB24:
		src := p.Data[0][y*p.LineSize[0]:]
		for x := 0; x < rowBytes; x += 3 {
			dst[x] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x]
		}

	case PixelFormatYUV420P:
		yRow := p.Data[0][y*p.LineSize[0]:]
		uRow := p.Data[1][(y/2)*p.LineSize[1]:]
		vRow := p.Data[2][(y/2)*p.LineSize[2]:]
		for x := 0; x < p.Width; x++ {
			r, g, b := yuvToRGB(yRow[x], uRow[x/2], vRow[x/2])
			dst[x*3] = b
			dst[x*3+1] = g
			dst[x*3+2] = r
		}
	}
}

// yuvToRGB converts one limited-range BT.601 sample to RGB using the usual
// 8-bit fixed point coefficients.
func yuvToRGB(y, u, v byte) (r, g, b byte) {
	c := int(y) - 16
	d := int(u) - 128
	e := int(v) - 128

	r = clampByte((298*c + 409*e + 128) >> 8)
	g = clampByte((298*c - 100*d - 208*e + 128) >> 8)
	b = clampByte((298*c + 516*d + 128) >> 8)
	return r, g, b
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
