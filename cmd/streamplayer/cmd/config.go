package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PlayConfig is the resolved configuration of the play command.
type PlayConfig struct {
	URL         string
	PiPURL      string
	Zoom        int
	Cross       int
	PiPWidth    int
	PiPTop      int
	PiPLeft     int
	Width       int
	Height      int
	Duration    time.Duration
	Snapshot    string
	FFmpegPath  string
	FFprobePath string
	StopTimeout time.Duration
}

// setDefaults registers the default value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("play.zoom", 1)
	v.SetDefault("play.cross", 0)
	v.SetDefault("play.pip.width", 0)
	v.SetDefault("play.pip.top", -1)
	v.SetDefault("play.pip.left", -1)
	v.SetDefault("play.surface", "1280x720")
	v.SetDefault("play.duration", time.Duration(0))
	v.SetDefault("play.stop_timeout", 5*time.Second)
	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.probe_path", "ffprobe")
}

// loadPlayConfig resolves the play configuration from v.
func loadPlayConfig(v *viper.Viper) (PlayConfig, error) {
	cfg := PlayConfig{
		URL:         v.GetString("play.url"),
		PiPURL:      v.GetString("play.pip.url"),
		Zoom:        v.GetInt("play.zoom"),
		Cross:       v.GetInt("play.cross"),
		PiPWidth:    v.GetInt("play.pip.width"),
		PiPTop:      v.GetInt("play.pip.top"),
		PiPLeft:     v.GetInt("play.pip.left"),
		Duration:    v.GetDuration("play.duration"),
		Snapshot:    v.GetString("play.snapshot"),
		FFmpegPath:  v.GetString("ffmpeg.path"),
		FFprobePath: v.GetString("ffmpeg.probe_path"),
		StopTimeout: v.GetDuration("play.stop_timeout"),
	}
	if cfg.URL == "" {
		return PlayConfig{}, errors.New("a stream url is required (--url or STREAMPLAYER_PLAY_URL)")
	}
	if cfg.Cross < 0 {
		return PlayConfig{}, fmt.Errorf("crosshair length %d must not be negative", cfg.Cross)
	}

	var err error
	cfg.Width, cfg.Height, err = parseSurface(v.GetString("play.surface"))
	if err != nil {
		return PlayConfig{}, err
	}
	return cfg, nil
}

// parseSurface parses "WIDTHxHEIGHT".
func parseSurface(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("surface %q is not WIDTHxHEIGHT", s)
	}
	if width, err = strconv.Atoi(ws); err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("surface width %q is invalid", ws)
	}
	if height, err = strconv.Atoi(hs); err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("surface height %q is invalid", hs)
	}
	return width, height, nil
}
