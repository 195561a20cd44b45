package streamplayer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/streamplayer/decoder"
	"github.com/opd-ai/streamplayer/session"
	"github.com/opd-ai/streamplayer/video"
)

// instantClock makes every inter-frame sleep return at once.
type instantClock struct{}

func (instantClock) Now() time.Time                     { return time.Unix(1700000000, 0) }
func (instantClock) NewTimer(time.Duration) *time.Timer { return time.NewTimer(0) }

// solidDecoder yields pictures of one colour. frames == 0 means endless.
type solidDecoder struct {
	picture *video.Picture
	frames  int
	served  int
	delay   time.Duration
	gate    chan struct{}
}

func newSolidDecoder(width, height int, bgr [3]byte, frames int, delay time.Duration) *solidDecoder {
	p := video.NewBGRPicture(width, height)
	for i := 0; i < len(p.Data[0]); i += 3 {
		copy(p.Data[0][i:i+3], bgr[:])
	}
	return &solidDecoder{picture: p, frames: frames, delay: delay}
}

func (d *solidDecoder) NextPicture() (*video.Picture, error) {
	if d.gate != nil {
		<-d.gate
	}
	if d.frames > 0 && d.served >= d.frames {
		return nil, io.EOF
	}
	d.served++
	return d.picture, nil
}

func (d *solidDecoder) InterFrameDelay() time.Duration { return d.delay }
func (d *solidDecoder) Close() error                   { return nil }

var (
	red  = [3]byte{0x00, 0x00, 0xFF}
	blue = [3]byte{0xFF, 0x00, 0x00}
)

// testOpener understands "solid://<red|blue>/<width>x<height>?frames=N&delay=D".
func testOpener() session.Opener {
	return session.OpenerFunc(func(_ context.Context, url string) (session.Decoder, error) {
		colour, rest, _ := strings.Cut(strings.TrimPrefix(url, "solid://"), "/")
		size, query, _ := strings.Cut(rest, "?")

		var w, h int
		if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil {
			return nil, fmt.Errorf("bad size %q: %w", size, err)
		}
		frames := 0
		delay := time.Duration(0)
		for _, kv := range strings.Split(query, "&") {
			k, v, _ := strings.Cut(kv, "=")
			switch k {
			case "frames":
				fmt.Sscanf(v, "%d", &frames)
			case "delay":
				delay, _ = time.ParseDuration(v)
			}
		}

		bgr := red
		if colour == "blue" {
			bgr = blue
		}
		return newSolidDecoder(w, h, bgr, frames, delay), nil
	})
}

// callbackRecorder records stream callbacks from the dispatch thread.
type callbackRecorder struct {
	mu      sync.Mutex
	started []session.Stream
	stopped []session.Stream
	failed  []session.Stream
	errs    []error
}

func (r *callbackRecorder) onStarted(s session.Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, s)
}

func (r *callbackRecorder) onStopped(s session.Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = append(r.stopped, s)
}

func (r *callbackRecorder) onFailed(s session.Stream, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, s)
	r.errs = append(r.errs, err)
}

func (r *callbackRecorder) snapshot() (started, stopped, failed []session.Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Stream(nil), r.started...),
		append([]session.Stream(nil), r.stopped...),
		append([]session.Stream(nil), r.failed...)
}

// fakeFFmpeg writes shell scripts standing in for ffprobe, which reports one
// 4x2 video stream, and ffmpeg, which runs body.
func fakeFFmpeg(t *testing.T, body string) decoder.FFmpegConfig {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh on PATH")
	}

	const probe = `{"streams": [{"index": 0, "codec_type": "video", "width": 4, "height": 2,
 "r_frame_rate": "1000/1", "disposition": {"default": 1}}]}`

	dir := t.TempDir()
	cfg := decoder.FFmpegConfig{
		FFmpegPath:  filepath.Join(dir, "ffmpeg"),
		FFprobePath: filepath.Join(dir, "ffprobe"),
	}
	require.NoError(t, os.WriteFile(cfg.FFprobePath, []byte("#!/bin/sh\ncat <<'JSON'\n"+probe+"\nJSON\n"), 0o755))
	require.NoError(t, os.WriteFile(cfg.FFmpegPath, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return cfg
}
