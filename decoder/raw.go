package decoder

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/opd-ai/streamplayer/limits"
	"github.com/opd-ai/streamplayer/video"
)

const (
	// DefaultFrameDelay is used when a source does not report its frame rate.
	DefaultFrameDelay = 40 * time.Millisecond
)

// FrameDelay converts a frame rate into the pause between pictures.
func FrameDelay(fps float64) time.Duration {
	if fps <= 0 {
		return DefaultFrameDelay
	}
	d := time.Duration(float64(time.Second) / fps)
	if d <= 0 {
		return DefaultFrameDelay
	}
	return d
}

// waiter is implemented by closers that can report how the producer of the
// stream ended.
type waiter interface {
	Wait() error
}

// RawDecoder reads fixed-size packed BGR24 pictures from a byte stream.
type RawDecoder struct {
	r       io.Reader
	closer  io.Closer
	picture *video.Picture
	delay   time.Duration
	frames  uint64
}

// NewRawDecoder creates a decoder reading width x height BGR24 pictures
// from r. closer, if non-nil, is closed by Close. If closer also has a
// Wait() error method, it is called when r ends and a non-nil result turns
// the end of stream into an error.
func NewRawDecoder(r io.Reader, closer io.Closer, width, height int, delay time.Duration) (*RawDecoder, error) {
	if err := limits.ValidateFrameDimensions(width, height); err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultFrameDelay
	}
	return &RawDecoder{
		r:       r,
		closer:  closer,
		picture: video.NewBGRPicture(width, height),
		delay:   delay,
	}, nil
}

// NextPicture reads the next picture. A stream that ends exactly on a
// picture boundary reports io.EOF unless its producer failed; one that ends
// mid-picture is an error.
func (d *RawDecoder) NextPicture() (*video.Picture, error) {
	n, err := io.ReadFull(d.r, d.picture.Data[0])
	switch {
	case err == nil:
		d.frames++
		return d.picture, nil
	case errors.Is(err, io.EOF):
		if w, ok := d.closer.(waiter); ok {
			if werr := w.Wait(); werr != nil {
				return nil, fmt.Errorf("source ended after %d pictures: %w", d.frames, werr)
			}
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("truncated picture %d: got %d of %d bytes", d.frames, n, len(d.picture.Data[0]))
	default:
		return nil, fmt.Errorf("read picture %d: %w", d.frames, err)
	}
}

// InterFrameDelay returns the pause between pictures.
func (d *RawDecoder) InterFrameDelay() time.Duration { return d.delay }

// Close closes the underlying source.
func (d *RawDecoder) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
