package decoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbe = `{
  "format": {"format_name": "mpegts", "duration": "", "nb_streams": 3},
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "mjpeg", "width": 300, "height": 300,
     "disposition": {"default": 0, "attached_pic": 1}},
    {"index": 1, "codec_type": "audio", "codec_name": "aac"},
    {"index": 2, "codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720,
     "pix_fmt": "yuv420p", "avg_frame_rate": "0/0", "r_frame_rate": "30000/1001",
     "disposition": {"default": 1}}
  ]
}`

func TestParseAndSelectVideo(t *testing.T) {
	result, err := parseProbe([]byte(sampleProbe))
	require.NoError(t, err)
	assert.Equal(t, "mpegts", result.Format.FormatName)
	require.Len(t, result.Streams, 3)

	info, err := selectVideo(result)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Index)
	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.InDelta(t, 29.97, info.Framerate, 0.01)
}

func TestSelectVideoPrefersDefault(t *testing.T) {
	result := &ProbeResult{Streams: []ProbeStream{
		{Index: 0, CodecType: "video", Width: 640, Height: 360},
		{Index: 1, CodecType: "video", Width: 1920, Height: 1080, Disposition: ProbeDisposition{Default: 1}},
	}}
	info, err := selectVideo(result)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Index)
	assert.Zero(t, info.Framerate)
}

func TestSelectVideoMissing(t *testing.T) {
	_, err := selectVideo(&ProbeResult{Streams: []ProbeStream{{CodecType: "audio"}}})
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = selectVideo(&ProbeResult{Streams: []ProbeStream{{CodecType: "video"}}})
	assert.ErrorIs(t, err, ErrNoVideoStream)
}

func TestParseProbeGarbage(t *testing.T) {
	_, err := parseProbe([]byte("not json"))
	assert.Error(t, err)
}

func TestParseFramerate(t *testing.T) {
	tests := map[string]float64{
		"25/1":       25,
		"30000/1001": 30000.0 / 1001,
		"50":         50,
		"0/0":        0,
		"25/0":       0,
		"":           0,
		"abc":        0,
		"-5":         0,
	}
	for in, want := range tests {
		assert.InDelta(t, want, parseFramerate(in), 1e-9, in)
	}
}

func TestNetworkArgs(t *testing.T) {
	assert.Contains(t, networkArgs("https://cdn.example/live.m3u8"), "-reconnect")
	assert.Equal(t, []string{"-rtsp_transport", "tcp"}, networkArgs("rtsp://cam.local/stream"))
	assert.Empty(t, networkArgs("/tmp/clip.mp4"))
}

func TestFFmpegArgs(t *testing.T) {
	args := ffmpegArgs("rtsp://cam.local/1", 2)
	assert.Equal(t, "-", args[len(args)-1])
	assert.Contains(t, args, "bgr24")
	assert.Contains(t, args, "rawvideo")
	assert.Contains(t, args, "0:2")
	assert.Contains(t, args, "rtsp://cam.local/1")
	assert.Contains(t, args, "-rtsp_transport")
}

func TestProbeMissingBinary(t *testing.T) {
	p := NewProber("/nonexistent/ffprobe")
	_, err := p.ProbeVideo(context.Background(), "/tmp/clip.mp4")
	assert.Error(t, err)
}

func TestFFmpegOpenerMissingBinary(t *testing.T) {
	o := NewFFmpegOpener(FFmpegConfig{FFprobePath: "/nonexistent/ffprobe"})
	assert.Equal(t, "ffmpeg", o.cfg.FFmpegPath)
	_, err := o.Open(context.Background(), "/tmp/clip.mp4")
	assert.Error(t, err)
}
