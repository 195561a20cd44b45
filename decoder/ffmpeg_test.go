package decoder

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeProbeOutput = `{"format": {"format_name": "rtsp", "nb_streams": 1},
 "streams": [{"index": 0, "codec_type": "video", "codec_name": "h264",
  "width": 4, "height": 2, "r_frame_rate": "1000/1", "disposition": {"default": 1}}]}`

// fakeTools writes shell scripts standing in for ffprobe and ffmpeg. The
// ffmpeg script body runs after the probe succeeds.
func fakeTools(t *testing.T, ffmpegBody string) FFmpegConfig {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh on PATH")
	}

	dir := t.TempDir()
	probe := filepath.Join(dir, "ffprobe")
	ffmpeg := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(probe, []byte("#!/bin/sh\ncat <<'JSON'\n"+fakeProbeOutput+"\nJSON\n"), 0o755))
	require.NoError(t, os.WriteFile(ffmpeg, []byte("#!/bin/sh\n"+ffmpegBody+"\n"), 0o755))
	return FFmpegConfig{FFmpegPath: ffmpeg, FFprobePath: probe}
}

// oneFrame writes a single 4x2 BGR24 picture to stdout.
const oneFrame = "head -c 24 /dev/zero"

func TestFFmpegAbnormalExitIsError(t *testing.T) {
	cfg := fakeTools(t, oneFrame+"\necho 'Connection refused' >&2\nexit 1")

	dec, err := NewFFmpegOpener(cfg).Open(context.Background(), "rtsp://cam.local/1")
	require.NoError(t, err)
	defer dec.Close()

	pic, err := dec.NextPicture()
	require.NoError(t, err)
	assert.Equal(t, 4, pic.Width)
	assert.Equal(t, 2, pic.Height)

	_, err = dec.NextPicture()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "Connection refused")

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
	assert.NoError(t, dec.Close())
}

func TestFFmpegCleanExitIsEndOfStream(t *testing.T) {
	cfg := fakeTools(t, oneFrame+"\nexit 0")

	dec, err := NewFFmpegOpener(cfg).Open(context.Background(), "/tmp/clip.mp4")
	require.NoError(t, err)

	_, err = dec.NextPicture()
	require.NoError(t, err)
	_, err = dec.NextPicture()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, dec.Close())
}

func TestFFmpegCloseKillsRunningProcess(t *testing.T) {
	cfg := fakeTools(t, oneFrame+"\nexec sleep 30")

	dec, err := NewFFmpegOpener(cfg).Open(context.Background(), "/tmp/clip.mp4")
	require.NoError(t, err)

	_, err = dec.NextPicture()
	require.NoError(t, err)
	assert.NoError(t, dec.Close())
}

func TestLastLineKeepsFinalLine(t *testing.T) {
	var l lastLine
	_, _ = l.Write([]byte("first\nsecond li"))
	_, _ = l.Write([]byte("ne\n\n"))
	assert.Equal(t, "second line", l.String())

	_, _ = l.Write([]byte("unterminated"))
	assert.Equal(t, "unterminated", l.String())
}
