package decoder

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/streamplayer/limits"
	"github.com/opd-ai/streamplayer/video"
)

// PatternScheme is the URL scheme of the synthetic test source.
const PatternScheme = "pattern"

// ErrInvalidPattern indicates a malformed pattern:// URL.
var ErrInvalidPattern = errors.New("invalid pattern url")

// bars are the classic colour bar colours as RGB.
var bars = [...][3]byte{
	{0xC0, 0xC0, 0xC0}, // white
	{0xC0, 0xC0, 0x00}, // yellow
	{0x00, 0xC0, 0xC0}, // cyan
	{0x00, 0xC0, 0x00}, // green
	{0xC0, 0x00, 0xC0}, // magenta
	{0xC0, 0x00, 0x00}, // red
	{0x00, 0x00, 0xC0}, // blue
	{0x10, 0x10, 0x10}, // black
}

// PatternConfig describes a synthetic source.
type PatternConfig struct {
	Width  int
	Height int
	FPS    float64
	// Frames is the stream length. Zero means endless.
	Frames int
	Format video.PixelFormat
}

// ParsePattern parses pattern://WxH?fps=F&frames=N&format=bgr24|rgb24|yuv420p.
func ParsePattern(rawURL string) (PatternConfig, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PatternConfig{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if u.Scheme != PatternScheme {
		return PatternConfig{}, fmt.Errorf("%w: scheme %q", ErrInvalidPattern, u.Scheme)
	}

	cfg := PatternConfig{Width: 320, Height: 240, FPS: 25, Format: video.PixelFormatBGR24}

	if size := u.Host; size != "" {
		ws, hs, ok := strings.Cut(strings.ToLower(size), "x")
		if !ok {
			return PatternConfig{}, fmt.Errorf("%w: size %q", ErrInvalidPattern, size)
		}
		if cfg.Width, err = strconv.Atoi(ws); err != nil {
			return PatternConfig{}, fmt.Errorf("%w: width %q", ErrInvalidPattern, ws)
		}
		if cfg.Height, err = strconv.Atoi(hs); err != nil {
			return PatternConfig{}, fmt.Errorf("%w: height %q", ErrInvalidPattern, hs)
		}
	}
	if err := limits.ValidateFrameDimensions(cfg.Width, cfg.Height); err != nil {
		return PatternConfig{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	q := u.Query()
	if v := q.Get("fps"); v != "" {
		if cfg.FPS, err = strconv.ParseFloat(v, 64); err != nil || cfg.FPS <= 0 {
			return PatternConfig{}, fmt.Errorf("%w: fps %q", ErrInvalidPattern, v)
		}
	}
	if v := q.Get("frames"); v != "" {
		if cfg.Frames, err = strconv.Atoi(v); err != nil || cfg.Frames < 0 {
			return PatternConfig{}, fmt.Errorf("%w: frames %q", ErrInvalidPattern, v)
		}
	}
	switch v := q.Get("format"); v {
	case "", "bgr24":
	case "rgb24":
		cfg.Format = video.PixelFormatRGB24
	case "yuv420p":
		cfg.Format = video.PixelFormatYUV420P
	default:
		return PatternConfig{}, fmt.Errorf("%w: format %q", ErrInvalidPattern, v)
	}

	return cfg, nil
}

// PatternDecoder generates colour bars that scroll one bar width every
// second of stream time.
type PatternDecoder struct {
	cfg     PatternConfig
	picture *video.Picture
	frame   int
}

// NewPatternDecoder creates a synthetic decoder.
func NewPatternDecoder(cfg PatternConfig) (*PatternDecoder, error) {
	if err := limits.ValidateFrameDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 25
	}
	return &PatternDecoder{cfg: cfg, picture: allocPicture(cfg)}, nil
}

func allocPicture(cfg PatternConfig) *video.Picture {
	switch cfg.Format {
	case video.PixelFormatYUV420P:
		cw, ch := (cfg.Width+1)/2, (cfg.Height+1)/2
		return &video.Picture{
			Width:    cfg.Width,
			Height:   cfg.Height,
			Format:   video.PixelFormatYUV420P,
			Data:     [3][]byte{make([]byte, cfg.Width*cfg.Height), make([]byte, cw*ch), make([]byte, cw*ch)},
			LineSize: [3]int{cfg.Width, cw, cw},
		}
	case video.PixelFormatRGB24:
		p := video.NewBGRPicture(cfg.Width, cfg.Height)
		p.Format = video.PixelFormatRGB24
		return p
	default:
		return video.NewBGRPicture(cfg.Width, cfg.Height)
	}
}

// BarColor returns the RGB colour at column x of picture frame.
func (d *PatternDecoder) BarColor(frame, x int) [3]byte {
	barWidth := max(d.cfg.Width/len(bars), 1)
	shift := int(float64(frame) / d.cfg.FPS)
	return bars[(x/barWidth+shift)%len(bars)]
}

// NextPicture renders the next picture.
func (d *PatternDecoder) NextPicture() (*video.Picture, error) {
	if d.cfg.Frames > 0 && d.frame >= d.cfg.Frames {
		return nil, io.EOF
	}

	p := d.picture
	switch p.Format {
	case video.PixelFormatYUV420P:
		for x := 0; x < p.Width; x++ {
			c := d.BarColor(d.frame, x)
			y, u, v := rgbToYUV(c[0], c[1], c[2])
			for row := 0; row < p.Height; row++ {
				p.Data[0][row*p.LineSize[0]+x] = y
			}
			if x%2 == 0 {
				for row := 0; row < (p.Height+1)/2; row++ {
					p.Data[1][row*p.LineSize[1]+x/2] = u
					p.Data[2][row*p.LineSize[2]+x/2] = v
				}
			}
		}
	default:
		r, b := 0, 2
		if p.Format == video.PixelFormatBGR24 {
			r, b = 2, 0
		}
		row := p.Data[0][:p.LineSize[0]]
		for x := 0; x < p.Width; x++ {
			c := d.BarColor(d.frame, x)
			row[x*3+r] = c[0]
			row[x*3+1] = c[1]
			row[x*3+b] = c[2]
		}
		for y := 1; y < p.Height; y++ {
			copy(p.Data[0][y*p.LineSize[0]:(y+1)*p.LineSize[0]], row)
		}
	}

	d.frame++
	return p, nil
}

// InterFrameDelay returns 1/fps.
func (d *PatternDecoder) InterFrameDelay() time.Duration { return FrameDelay(d.cfg.FPS) }

// Close is a no-op.
func (d *PatternDecoder) Close() error { return nil }

// rgbToYUV is the limited-range BT.601 forward transform.
func rgbToYUV(r, g, b byte) (y, u, v byte) {
	ri, gi, bi := int(r), int(g), int(b)
	y = byte(((66*ri + 129*gi + 25*bi + 128) >> 8) + 16)
	u = byte(((-38*ri - 74*gi + 112*bi + 128) >> 8) + 128)
	v = byte(((112*ri - 94*gi - 18*bi + 128) >> 8) + 128)
	return y, u, v
}
