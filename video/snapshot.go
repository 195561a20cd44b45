package video

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"

	"github.com/opd-ai/streamplayer/limits"
)

var (
	// ErrAllocation indicates the snapshot allocation could not be satisfied.
	ErrAllocation = errors.New("snapshot allocation failed")

	// ErrInvalidSnapshot indicates a byte slice that is not a snapshot.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrSnapshotReleased indicates use of a snapshot after Release.
	ErrSnapshotReleased = errors.New("snapshot already released")
)

const (
	bitmapFileHeaderSize = 14
	bitsPerPixel         = 24
	compressionRGB       = 0
)

// SnapshotHeader describes the pixel data that follows a snapshot header.
// The layout is the 40-byte BITMAPINFOHEADER of an uncompressed 24-bit DIB.
type SnapshotHeader struct {
	Width       int
	Height      int
	BitCount    int
	Compression int
	ImageSize   int
	// BottomUp is true when the first stored row is the bottom of the image.
	BottomUp bool
}

// Stride returns the padded row length implied by the header.
func (h SnapshotHeader) Stride() int {
	return limits.RowStride(h.Width)
}

// Snapshot is a caller-owned, self-describing copy of a frame buffer: a
// bitmap info header immediately followed by the stored rows, bottom row
// first, each padded to 4 bytes.
type Snapshot struct {
	data []byte
}

// Snapshot exports the current picture. maxBytes bounds the allocation;
// zero or negative uses limits.MaxSnapshotBytes.
func (b *Buffer) Snapshot(maxBytes int) (*Snapshot, error) {
	if maxBytes <= 0 {
		maxBytes = limits.MaxSnapshotBytes
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	size := limits.BitmapHeaderSize + len(b.pixels)
	if err := limits.ValidateSnapshotSize(size, maxBytes); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "Buffer.Snapshot",
			"size":      size,
			"max_bytes": maxBytes,
			"error":     err.Error(),
		}).Error("Snapshot exceeds allocation limit")
		return nil, fmt.Errorf("%w: %v", ErrAllocation, err)
	}

	data, err := allocate(size)
	if err != nil {
		return nil, err
	}

	putHeader(data, SnapshotHeader{
		Width:       b.width,
		Height:      b.height,
		BitCount:    bitsPerPixel,
		Compression: compressionRGB,
		ImageSize:   len(b.pixels),
		BottomUp:    true,
	})
	copy(data[limits.BitmapHeaderSize:], b.pixels)

	return &Snapshot{data: data}, nil
}

// allocate converts a failed make into ErrAllocation.
func allocate(size int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()
	return make([]byte, size), nil
}

func putHeader(dst []byte, h SnapshotHeader) {
	height := int32(h.Height)
	if !h.BottomUp {
		height = -height
	}

	le := binary.LittleEndian
	le.PutUint32(dst[0:], limits.BitmapHeaderSize)
	le.PutUint32(dst[4:], uint32(int32(h.Width)))
	le.PutUint32(dst[8:], uint32(height))
	le.PutUint16(dst[12:], 1)
	le.PutUint16(dst[14:], uint16(h.BitCount))
	le.PutUint32(dst[16:], uint32(h.Compression))
	le.PutUint32(dst[20:], uint32(h.ImageSize))
	clear(dst[24:limits.BitmapHeaderSize])
}

// ParseSnapshotHeader decodes the header at the start of data and checks that
// enough pixel bytes follow it.
func ParseSnapshotHeader(data []byte) (SnapshotHeader, error) {
	if len(data) < limits.BitmapHeaderSize {
		return SnapshotHeader{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidSnapshot, len(data))
	}

	le := binary.LittleEndian
	if size := le.Uint32(data[0:]); size != limits.BitmapHeaderSize {
		return SnapshotHeader{}, fmt.Errorf("%w: header size %d", ErrInvalidSnapshot, size)
	}

	height := int32(le.Uint32(data[8:]))
	h := SnapshotHeader{
		Width:       int(int32(le.Uint32(data[4:]))),
		Height:      int(height),
		BitCount:    int(le.Uint16(data[14:])),
		Compression: int(le.Uint32(data[16:])),
		ImageSize:   int(le.Uint32(data[20:])),
		BottomUp:    height > 0,
	}
	if height < 0 {
		h.Height = -h.Height
	}

	if h.BitCount != bitsPerPixel || h.Compression != compressionRGB {
		return SnapshotHeader{}, fmt.Errorf("%w: %d bpp, compression %d", ErrInvalidSnapshot, h.BitCount, h.Compression)
	}
	if err := limits.ValidateFrameDimensions(h.Width, h.Height); err != nil {
		return SnapshotHeader{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if need := h.Stride() * h.Height; len(data)-limits.BitmapHeaderSize < need {
		return SnapshotHeader{}, fmt.Errorf("%w: %d pixel bytes, need %d",
			ErrInvalidSnapshot, len(data)-limits.BitmapHeaderSize, need)
	}
	return h, nil
}

// Bytes returns the snapshot allocation: header followed by pixel rows.
// It returns nil after Release.
func (s *Snapshot) Bytes() []byte {
	return s.data
}

// Len returns the size of the allocation in bytes.
func (s *Snapshot) Len() int {
	return len(s.data)
}

// Header decodes the snapshot header.
func (s *Snapshot) Header() (SnapshotHeader, error) {
	if s.data == nil {
		return SnapshotHeader{}, ErrSnapshotReleased
	}
	return ParseSnapshotHeader(s.data)
}

// Pixels returns the pixel rows following the header.
func (s *Snapshot) Pixels() []byte {
	if s.data == nil {
		return nil
	}
	return s.data[limits.BitmapHeaderSize:]
}

// Release drops the allocation. The snapshot is unusable afterwards.
func (s *Snapshot) Release() {
	s.data = nil
}

// WriteBMP writes the snapshot as a complete .bmp stream: a 14-byte file
// header followed by the snapshot itself.
func (s *Snapshot) WriteBMP(w io.Writer) error {
	if s.data == nil {
		return ErrSnapshotReleased
	}

	var fh [bitmapFileHeaderSize]byte
	fh[0], fh[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(fh[2:], uint32(bitmapFileHeaderSize+len(s.data)))
	binary.LittleEndian.PutUint32(fh[10:], bitmapFileHeaderSize+limits.BitmapHeaderSize)

	if _, err := w.Write(fh[:]); err != nil {
		return fmt.Errorf("write bitmap file header: %w", err)
	}
	if _, err := w.Write(s.data); err != nil {
		return fmt.Errorf("write bitmap data: %w", err)
	}
	return nil
}

// Image decodes the snapshot into an image.Image.
func (s *Snapshot) Image() (image.Image, error) {
	var buf bytes.Buffer
	if err := s.WriteBMP(&buf); err != nil {
		return nil, err
	}
	img, err := bmp.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return img, nil
}
