package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSurface(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{in: "1280x720", w: 1280, h: 720},
		{in: " 640X360 ", w: 640, h: 360},
		{in: "640", wantErr: true},
		{in: "0x10", wantErr: true},
		{in: "10x-1", wantErr: true},
		{in: "axb", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseSurface(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestLoadPlayConfigDefaults(t *testing.T) {
	v := viper.New()
	configureViper(v, "")
	v.Set("play.url", "pattern://64x48")

	cfg, err := loadPlayConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "pattern://64x48", cfg.URL)
	assert.Equal(t, 1, cfg.Zoom)
	assert.Equal(t, -1, cfg.PiPTop)
	assert.Equal(t, -1, cfg.PiPLeft)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, 5*time.Second, cfg.StopTimeout)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
}

func TestLoadPlayConfigFromEnv(t *testing.T) {
	t.Setenv("STREAMPLAYER_PLAY_URL", "rtsp://cam.local/1")
	t.Setenv("STREAMPLAYER_PLAY_ZOOM", "3")
	t.Setenv("STREAMPLAYER_PLAY_PIP_WIDTH", "200")
	t.Setenv("STREAMPLAYER_PLAY_SURFACE", "320x240")

	v := viper.New()
	configureViper(v, "")

	cfg, err := loadPlayConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "rtsp://cam.local/1", cfg.URL)
	assert.Equal(t, 3, cfg.Zoom)
	assert.Equal(t, 200, cfg.PiPWidth)
	assert.Equal(t, 320, cfg.Width)
}

func TestLoadPlayConfigFromYAML(t *testing.T) {
	v := viper.New()
	configureViper(v, "")
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
play:
  url: pattern://32x32
  cross: 12
  pip:
    url: pattern://16x16
    left: 4
`)))

	cfg, err := loadPlayConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "pattern://16x16", cfg.PiPURL)
	assert.Equal(t, 12, cfg.Cross)
	assert.Equal(t, 4, cfg.PiPLeft)
	assert.Equal(t, -1, cfg.PiPTop)
}

func TestLoadPlayConfigErrors(t *testing.T) {
	v := viper.New()
	configureViper(v, "")
	_, err := loadPlayConfig(v)
	assert.Error(t, err, "url is required")

	v.Set("play.url", "pattern://")
	v.Set("play.cross", -1)
	_, err = loadPlayConfig(v)
	assert.Error(t, err)

	v.Set("play.cross", 0)
	v.Set("play.surface", "big")
	_, err = loadPlayConfig(v)
	assert.Error(t, err)
}

func TestInitLogging(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")
	v.Set("logging.format", "json")
	assert.NoError(t, initLogging(v))

	v.Set("logging.level", "loud")
	assert.Error(t, initLogging(v))

	v.Set("logging.level", "info")
	v.Set("logging.format", "xml")
	assert.Error(t, initLogging(v))

	v.Set("logging.format", "text")
	assert.NoError(t, initLogging(v))
}
