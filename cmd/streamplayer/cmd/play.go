package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	streamplayer "github.com/opd-ai/streamplayer"
	"github.com/opd-ai/streamplayer/decoder"
	"github.com/opd-ai/streamplayer/host"
	"github.com/opd-ai/streamplayer/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a stream into a headless window",
	Long: `Play decodes --url (and --pip-url as an overlay) until the stream ends,
--duration elapses, or the process is interrupted. Any ffmpeg-readable URL
works, as does the synthetic source pattern://WIDTHxHEIGHT?fps=N&frames=N.`,
	Example: `  streamplayer play --url rtsp://camera.local/stream --zoom 2 --cross 40
  streamplayer play --url pattern://640x360 --pip-url pattern://320x180 --pip-width 160 --duration 10s --snapshot frame.bmp`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadPlayConfig(viper.GetViper())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPlay(ctx, cfg)
	},
}

func init() {
	f := playCmd.Flags()
	f.String("url", "", "primary stream URL")
	f.String("pip-url", "", "picture-in-picture stream URL")
	f.Int("zoom", 1, "integer zoom factor")
	f.Int("cross", 0, "crosshair half-length in pixels (0 disables)")
	f.Int("pip-width", 0, "overlay width in pixels (0 keeps native size)")
	f.Int("pip-top", -1, "overlay top offset (negative centres)")
	f.Int("pip-left", -1, "overlay left offset (negative centres)")
	f.String("surface", "1280x720", "paint surface size WIDTHxHEIGHT")
	f.Duration("duration", 0, "stop after this long (0 plays until the stream ends)")
	f.String("snapshot", "", "write the last primary frame to this .bmp file")
	f.String("ffmpeg", "ffmpeg", "ffmpeg binary")
	f.String("ffprobe", "ffprobe", "ffprobe binary")

	mustBindPFlag("play.url", f.Lookup("url"))
	mustBindPFlag("play.pip.url", f.Lookup("pip-url"))
	mustBindPFlag("play.zoom", f.Lookup("zoom"))
	mustBindPFlag("play.cross", f.Lookup("cross"))
	mustBindPFlag("play.pip.width", f.Lookup("pip-width"))
	mustBindPFlag("play.pip.top", f.Lookup("pip-top"))
	mustBindPFlag("play.pip.left", f.Lookup("pip-left"))
	mustBindPFlag("play.surface", f.Lookup("surface"))
	mustBindPFlag("play.duration", f.Lookup("duration"))
	mustBindPFlag("play.snapshot", f.Lookup("snapshot"))
	mustBindPFlag("ffmpeg.path", f.Lookup("ffmpeg"))
	mustBindPFlag("ffmpeg.probe_path", f.Lookup("ffprobe"))

	rootCmd.AddCommand(playCmd)
}

// runPlay plays cfg until the primary stream ends or ctx is done.
func runPlay(ctx context.Context, cfg PlayConfig) error {
	opts := streamplayer.NewOptions()
	opts.FFmpeg = decoder.FFmpegConfig{FFmpegPath: cfg.FFmpegPath, FFprobePath: cfg.FFprobePath}
	return playWith(ctx, cfg, opts)
}

func playWith(ctx context.Context, cfg PlayConfig, opts *streamplayer.Options) error {
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	player, err := streamplayer.New(opts)
	if err != nil {
		return err
	}

	window := host.NewMemoryWindow(cfg.Width, cfg.Height)
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_ = window.Run(ctx)
	}()

	log := logrus.WithFields(logrus.Fields{
		"function": "playWith",
		"window":   window.Handle(),
	})

	err = player.Initialize(window,
		func(s session.Stream) {
			log.WithField("stream", s).Info("Stream started")
		},
		func(s session.Stream) {
			log.WithField("stream", s).Info("Stream stopped")
			if s == session.StreamPrimary {
				cancel(nil)
			}
		},
		func(s session.Stream, err error) {
			log.WithFields(logrus.Fields{"stream": s, "error": err}).Error("Stream failed")
			if s == session.StreamPrimary {
				cancel(err)
			}
		},
	)
	if err != nil {
		return err
	}

	player.SetupZoom(cfg.Zoom)
	player.SetupCross(cfg.Cross)
	player.SetupPiP(cfg.PiPWidth, cfg.PiPTop, cfg.PiPLeft)

	if err := player.StartPlay(cfg.URL); err != nil {
		player.Uninitialize()
		return err
	}
	if cfg.PiPURL != "" {
		if err := player.StartPlayPiP(cfg.PiPURL); err != nil {
			player.Uninitialize()
			return err
		}
	}

	<-ctx.Done()
	<-dispatchDone

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.StopTimeout)
	defer stopCancel()
	if err := player.StopContext(stopCtx); err != nil {
		log.WithField("error", err.Error()).Warn("Decode loops still running at exit")
	}

	for _, s := range []session.Stream{session.StreamPrimary, session.StreamOverlay} {
		st := player.Stats(s)
		if st.Runs == 0 {
			continue
		}
		log.WithFields(logrus.Fields{
			"stream":   s,
			"run_id":   st.RunID,
			"frames":   st.FramesDecoded,
			"failures": st.Failures,
			"paints":   window.Paints(),
		}).Info("Playback statistics")
	}

	if cfg.Snapshot != "" {
		if err := writeSnapshot(player, cfg.Snapshot); err != nil {
			log.WithField("error", err.Error()).Error("Snapshot failed")
		}
	}

	if err := player.Uninitialize(); err != nil {
		return err
	}

	if cause := context.Cause(ctx); cause != nil && cause != context.Canceled && cause != context.DeadlineExceeded {
		return cause
	}
	return nil
}

func writeSnapshot(player *streamplayer.Player, path string) error {
	snap, err := player.GetCurrentFrame()
	if err != nil {
		return err
	}
	defer snap.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	if err := snap.WriteBMP(f); err != nil {
		f.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "writeSnapshot",
		"path":     path,
		"bytes":    snap.Len(),
	}).Info("Wrote snapshot")
	return nil
}
