package session

import (
	"context"
	"time"

	"github.com/opd-ai/streamplayer/video"
)

// Decoder yields successive decoded pictures from one opened source.
//
// NextPicture blocks until the next picture is available. It returns io.EOF
// once the stream has ended; any other error is a decode failure. The
// returned picture is only valid until the next call.
type Decoder interface {
	NextPicture() (*video.Picture, error)
	// InterFrameDelay is how long to wait before asking for the next picture.
	InterFrameDelay() time.Duration
	Close() error
}

// Opener opens a Decoder for a source URL.
type Opener interface {
	Open(ctx context.Context, url string) (Decoder, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, url string) (Decoder, error)

// Open calls f(ctx, url).
func (f OpenerFunc) Open(ctx context.Context, url string) (Decoder, error) {
	return f(ctx, url)
}
