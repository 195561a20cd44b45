package streamplayer

import (
	"fmt"

	"golang.org/x/image/draw"

	"github.com/opd-ai/streamplayer/decoder"
	"github.com/opd-ai/streamplayer/limits"
	"github.com/opd-ai/streamplayer/session"
	"github.com/opd-ai/streamplayer/video"
)

// Options contains configuration for a Player.
type Options struct {
	// BrightenDelta is added to each channel of crosshair pixels.
	BrightenDelta byte
	// CrossStrokeDivisor sets the crosshair stroke half-width to
	// max(1, length/CrossStrokeDivisor).
	CrossStrokeDivisor int
	// Interpolator stretches the composited frame onto the paint surface.
	Interpolator draw.Interpolator
	// MaxSnapshotBytes bounds GetCurrentFrame allocations.
	MaxSnapshotBytes int
	// TimeProvider drives inter-frame sleeps. Nil uses the system clock.
	TimeProvider session.TimeProvider
	// Opener opens decoders. Nil uses decoder.NewOpener(FFmpeg).
	Opener session.Opener
	FFmpeg decoder.FFmpegConfig
}

// NewOptions creates default options.
func NewOptions() *Options {
	return &Options{
		BrightenDelta:      video.DefaultBrightenDelta,
		CrossStrokeDivisor: video.DefaultStrokeDivisor,
		Interpolator:       draw.ApproxBiLinear,
		MaxSnapshotBytes:   limits.MaxSnapshotBytes,
		FFmpeg:             decoder.DefaultFFmpegConfig(),
	}
}

func (o *Options) validate() error {
	if o.CrossStrokeDivisor < 1 {
		return fmt.Errorf("%w: cross stroke divisor %d", ErrInvalidConfiguration, o.CrossStrokeDivisor)
	}
	if o.MaxSnapshotBytes <= limits.BitmapHeaderSize {
		return fmt.Errorf("%w: snapshot limit %d", ErrInvalidConfiguration, o.MaxSnapshotBytes)
	}
	return nil
}
