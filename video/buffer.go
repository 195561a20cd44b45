package video

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamplayer/limits"
)

// ErrDimensionMismatch indicates a picture whose size differs from the buffer
// it is ingested into. Buffer dimensions are fixed at construction.
var ErrDimensionMismatch = errors.New("picture dimensions do not match frame buffer")

// Buffer owns the pixel storage of one decoded picture in display-ready form.
//
// Pixels are stored as 24-bit BGR triplets, bottom row first, with each row
// padded to a 4-byte boundary. Width and height never change after
// construction; a stream that changes resolution gets a new Buffer.
//
// Update takes the write lock. Composite and Snapshot take the read lock, so
// a reader always observes either the previous picture or the next one in
// full, never a mix of both.
type Buffer struct {
	width    int
	height   int
	rowBytes int
	stride   int

	mu      sync.RWMutex
	pixels  []byte
	updates uint64
}

// NewBuffer allocates storage for a width x height picture and immediately
// ingests initial.
func NewBuffer(width, height int, initial *Picture) (*Buffer, error) {
	if err := limits.ValidateFrameDimensions(width, height); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPicture, err)
	}

	rowBytes := limits.RowBytes(width)
	b := &Buffer{
		width:    width,
		height:   height,
		rowBytes: rowBytes,
		stride:   rowBytes + limits.RowPadding(rowBytes),
	}
	b.pixels = make([]byte, b.stride*height)

	logrus.WithFields(logrus.Fields{
		"function": "NewBuffer",
		"width":    width,
		"height":   height,
		"stride":   b.stride,
	}).Debug("Allocated frame buffer")

	if err := b.Update(initial); err != nil {
		return nil, err
	}
	return b, nil
}

// Width returns the picture width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the picture height in pixels.
func (b *Buffer) Height() int { return b.height }

// Stride returns the length of one stored row including padding.
func (b *Buffer) Stride() int { return b.stride }

// Dimensions returns width and height. No lock is taken; both are immutable.
func (b *Buffer) Dimensions() (width, height int) {
	return b.width, b.height
}

// Update replaces the stored pixels with p.
//
// The last source row becomes the first stored row, matching the bottom-up
// bitmap convention, and the padding bytes of every row are zeroed. Nothing
// of the previous picture survives.
func (b *Buffer) Update(p *Picture) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Width != b.width || p.Height != b.height {
		return fmt.Errorf("%w: buffer %dx%d, picture %dx%d",
			ErrDimensionMismatch, b.width, b.height, p.Width, p.Height)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for y := 0; y < b.height; y++ {
		row := b.pixels[y*b.stride : (y+1)*b.stride]
		p.writeRowBGR(b.height-y-1, row)
		clear(row[b.rowBytes:])
	}
	b.updates++
	return nil
}

// Pixels returns a copy of the stored rows, bottom row first.
func (b *Buffer) Pixels() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), b.pixels...)
}

// pixelOffset returns the storage offset of (x, y) with y counted from the top.
func (b *Buffer) pixelOffset(x, y int) int {
	return (b.height-1-y)*b.stride + x*limits.BytesPerPixel
}
