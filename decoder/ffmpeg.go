package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/streamplayer/session"
)

// FFmpegConfig locates the ffmpeg tools.
type FFmpegConfig struct {
	FFmpegPath   string
	FFprobePath  string
	ProbeTimeout time.Duration
}

// DefaultFFmpegConfig returns a config that finds the tools on PATH.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		ProbeTimeout: 30 * time.Second,
	}
}

// FFmpegOpener decodes any source ffmpeg understands by running it as a
// child process that writes packed BGR24 pictures to its stdout.
type FFmpegOpener struct {
	cfg    FFmpegConfig
	prober *Prober
}

// NewFFmpegOpener creates an opener. Empty config fields take defaults.
func NewFFmpegOpener(cfg FFmpegConfig) *FFmpegOpener {
	def := DefaultFFmpegConfig()
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = def.FFmpegPath
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = def.FFprobePath
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}
	return &FFmpegOpener{
		cfg:    cfg,
		prober: NewProber(cfg.FFprobePath).WithTimeout(cfg.ProbeTimeout),
	}
}

// Open probes url and starts decoding it.
func (o *FFmpegOpener) Open(ctx context.Context, url string) (session.Decoder, error) {
	info, err := o.prober.ProbeVideo(ctx, url)
	if err != nil {
		return nil, err
	}

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, o.cfg.FFmpegPath, ffmpegArgs(url, info.Index)...)

	stderr := logrus.WithFields(logrus.Fields{
		"function": "FFmpegOpener.Open",
		"process":  "ffmpeg",
	}).WriterLevel(logrus.DebugLevel)
	tail := &lastLine{}
	cmd.Stderr = io.MultiWriter(stderr, tail)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		stderr.Close()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		stderr.Close()
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	proc := &ffmpegProcess{cmd: cmd, ctx: procCtx, cancel: cancel, stderr: stderr, tail: tail}
	raw, err := NewRawDecoder(stdout, proc, info.Width, info.Height, FrameDelay(info.Framerate))
	if err != nil {
		proc.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "FFmpegOpener.Open",
		"pid":      cmd.Process.Pid,
		"width":    info.Width,
		"height":   info.Height,
		"delay":    raw.InterFrameDelay(),
	}).Info("Started ffmpeg decoder")

	return raw, nil
}

// ffmpegArgs builds the decode command line for the given video stream.
func ffmpegArgs(url string, streamIndex int) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	args = append(args, networkArgs(url)...)
	args = append(args,
		"-i", url,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-an", "-sn",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-",
	)
	return args
}

// ffmpegProcess owns a running ffmpeg child.
type ffmpegProcess struct {
	cmd    *exec.Cmd
	ctx    context.Context
	cancel context.CancelFunc
	stderr io.Closer
	tail   *lastLine

	once    sync.Once
	waitErr error
}

// reap waits for the process once and releases its stderr logger.
func (p *ffmpegProcess) reap() error {
	p.once.Do(func() {
		p.waitErr = p.cmd.Wait()
		p.stderr.Close()
	})
	return p.waitErr
}

// Wait reaps ffmpeg after its output ended. A non-zero exit that was not
// caused by Close is reported with the last line ffmpeg logged.
func (p *ffmpegProcess) Wait() error {
	err := p.reap()
	if err == nil || p.ctx.Err() != nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("ffmpeg wait: %w", err)
	}
	if line := p.tail.String(); line != "" {
		return fmt.Errorf("ffmpeg %w: %s", exitErr, line)
	}
	return fmt.Errorf("ffmpeg %w", exitErr)
}

// Close kills the process and reaps it. Exit caused by the kill is not an
// error.
func (p *ffmpegProcess) Close() error {
	p.cancel()
	err := p.reap()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("ffmpeg wait: %w", err)
	}
	return nil
}

// lastLine keeps the last non-empty line written to it.
type lastLine struct {
	mu      sync.Mutex
	partial []byte
	last    string
}

func (l *lastLine) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.partial = append(l.partial, b...)
	for {
		i := bytes.IndexByte(l.partial, '\n')
		if i < 0 {
			break
		}
		if line := bytes.TrimSpace(l.partial[:i]); len(line) > 0 {
			l.last = string(line)
		}
		l.partial = l.partial[i+1:]
	}
	if len(l.partial) > maxStderrLine {
		l.partial = l.partial[len(l.partial)-maxStderrLine:]
	}
	return len(b), nil
}

// String returns the last complete line, or the unterminated tail if ffmpeg
// exited mid-line.
func (l *lastLine) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if line := bytes.TrimSpace(l.partial); len(line) > 0 {
		return string(line)
	}
	return l.last
}

const maxStderrLine = 512
