package decoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoVideoStream indicates a source without a decodable video stream.
var ErrNoVideoStream = errors.New("no video stream")

// ProbeResult is the subset of ffprobe's JSON output the player uses.
type ProbeResult struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

// ProbeFormat contains container format information.
type ProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	NumStreams int    `json:"nb_streams"`
}

// ProbeStream contains stream information.
type ProbeStream struct {
	Index        int              `json:"index"`
	CodecName    string           `json:"codec_name"`
	CodecType    string           `json:"codec_type"` // video, audio, subtitle, data
	Width        int              `json:"width,omitempty"`
	Height       int              `json:"height,omitempty"`
	PixFmt       string           `json:"pix_fmt,omitempty"`
	RFrameRate   string           `json:"r_frame_rate,omitempty"`
	AvgFrameRate string           `json:"avg_frame_rate,omitempty"`
	Disposition  ProbeDisposition `json:"disposition,omitempty"`
}

// ProbeDisposition contains stream disposition flags.
type ProbeDisposition struct {
	Default     int `json:"default"`
	AttachedPic int `json:"attached_pic"`
}

// VideoInfo describes the video stream selected for playback.
type VideoInfo struct {
	Index     int
	Codec     string
	Width     int
	Height    int
	Framerate float64
	PixFmt    string
}

// Prober runs ffprobe.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
}

// NewProber creates a prober for the given ffprobe binary.
func NewProber(ffprobePath string) *Prober {
	return &Prober{
		ffprobePath: ffprobePath,
		timeout:     30 * time.Second,
	}
}

// WithTimeout sets the probe timeout.
func (p *Prober) WithTimeout(timeout time.Duration) *Prober {
	p.timeout = timeout
	return p
}

// Probe probes url and returns the raw ffprobe result.
func (p *Prober) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
	}
	args = append(args, networkArgs(url)...)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("probe timeout after %v", p.timeout)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(output)
}

// ProbeVideo probes url and selects its video stream.
func (p *Prober) ProbeVideo(ctx context.Context, url string) (*VideoInfo, error) {
	result, err := p.Probe(ctx, url)
	if err != nil {
		return nil, err
	}
	return selectVideo(result)
}

func parseProbe(output []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	return &result, nil
}

// selectVideo picks the default video stream, falling back to the first one.
// Cover art is never selected.
func selectVideo(result *ProbeResult) (*VideoInfo, error) {
	var chosen *ProbeStream
	for i := range result.Streams {
		s := &result.Streams[i]
		if s.CodecType != "video" || s.Disposition.AttachedPic == 1 {
			continue
		}
		if chosen == nil || (s.Disposition.Default == 1 && chosen.Disposition.Default != 1) {
			chosen = s
		}
	}
	if chosen == nil {
		return nil, ErrNoVideoStream
	}
	if chosen.Width <= 0 || chosen.Height <= 0 {
		return nil, fmt.Errorf("%w: stream %d reports %dx%d", ErrNoVideoStream, chosen.Index, chosen.Width, chosen.Height)
	}

	info := &VideoInfo{
		Index:  chosen.Index,
		Codec:  chosen.CodecName,
		Width:  chosen.Width,
		Height: chosen.Height,
		PixFmt: chosen.PixFmt,
	}
	if chosen.AvgFrameRate != "" {
		info.Framerate = parseFramerate(chosen.AvgFrameRate)
	}
	if info.Framerate == 0 && chosen.RFrameRate != "" {
		info.Framerate = parseFramerate(chosen.RFrameRate)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "selectVideo",
		"index":     info.Index,
		"codec":     info.Codec,
		"width":     info.Width,
		"height":    info.Height,
		"framerate": info.Framerate,
	}).Debug("Selected video stream")

	return info, nil
}

// parseFramerate parses "num/den" or a plain number. Unparseable or
// degenerate rates yield 0.
func parseFramerate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// networkArgs returns protocol options for network sources.
func networkArgs(url string) []string {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return []string{
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		}
	case strings.HasPrefix(url, "rtsp://"), strings.HasPrefix(url, "rtsps://"):
		return []string{"-rtsp_transport", "tcp"}
	default:
		return nil
	}
}
