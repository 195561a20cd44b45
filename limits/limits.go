package limits

import (
	"errors"
	"fmt"
)

const (
	// BytesPerPixel is the size of one stored BGR24 pixel.
	BytesPerPixel = 3

	// RowAlignment is the byte boundary every stored row is padded to.
	RowAlignment = 4

	// MaxFrameDimension is the largest accepted picture width or height.
	MaxFrameDimension = 16384

	// MaxFrameBytes is the absolute maximum for one frame buffer's storage.
	MaxFrameBytes = 512 * 1024 * 1024

	// BitmapHeaderSize is the size of the BITMAPINFOHEADER prefixed to snapshots.
	BitmapHeaderSize = 40

	// MaxSnapshotBytes is the default ceiling for an exported snapshot.
	MaxSnapshotBytes = MaxFrameBytes + BitmapHeaderSize
)

var (
	// ErrInvalidDimensions indicates a zero or negative width or height.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrFrameTooLarge indicates a frame exceeds the configured size limits.
	ErrFrameTooLarge = errors.New("frame too large")
)

// RowBytes returns the number of meaningful bytes in one stored row.
func RowBytes(width int) int {
	return width * BytesPerPixel
}

// RowPadding returns the number of zero bytes appended to a row of rowBytes
// bytes so that the next row starts on a RowAlignment boundary.
func RowPadding(rowBytes int) int {
	return (RowAlignment - rowBytes%RowAlignment) % RowAlignment
}

// RowStride returns the padded length of one stored row for the given width.
func RowStride(width int) int {
	rb := RowBytes(width)
	return rb + RowPadding(rb)
}

// FrameBytes returns the storage size of a frame including row padding.
func FrameBytes(width, height int) int {
	return RowStride(width) * height
}

// ValidateFrameDimensions validates picture dimensions against MaxFrameDimension
// and MaxFrameBytes. Returns an error with context if either check fails.
func ValidateFrameDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxFrameDimension || height > MaxFrameDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrFrameTooLarge, width, height, MaxFrameDimension)
	}
	if size := FrameBytes(width, height); size > MaxFrameBytes {
		return fmt.Errorf("%w: storage size %d exceeds limit %d", ErrFrameTooLarge, size, MaxFrameBytes)
	}
	return nil
}

// ValidateSnapshotSize validates an export size against maxSize.
func ValidateSnapshotSize(size, maxSize int) error {
	if size <= BitmapHeaderSize {
		return fmt.Errorf("%w: snapshot size %d", ErrInvalidDimensions, size)
	}
	if size > maxSize {
		return fmt.Errorf("%w: snapshot size %d exceeds limit %d", ErrFrameTooLarge, size, maxSize)
	}
	return nil
}
