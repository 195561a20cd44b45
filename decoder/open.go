package decoder

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamplayer/session"
)

// Opener dispatches on the URL scheme: pattern:// sources are generated in
// process and everything else is handed to ffmpeg.
type Opener struct {
	ffmpeg *FFmpegOpener
}

// NewOpener creates the default opener.
func NewOpener(cfg FFmpegConfig) *Opener {
	return &Opener{ffmpeg: NewFFmpegOpener(cfg)}
}

// Open opens rawURL.
func (o *Opener) Open(ctx context.Context, rawURL string) (session.Decoder, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme == PatternScheme {
		cfg, err := ParsePattern(rawURL)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"function": "Opener.Open",
			"width":    cfg.Width,
			"height":   cfg.Height,
			"format":   cfg.Format,
		}).Debug("Opening pattern source")
		return NewPatternDecoder(cfg)
	}
	return o.ffmpeg.Open(ctx, rawURL)
}

// Open opens rawURL with the default ffmpeg configuration.
func Open(ctx context.Context, rawURL string) (session.Decoder, error) {
	return NewOpener(DefaultFFmpegConfig()).Open(ctx, rawURL)
}
