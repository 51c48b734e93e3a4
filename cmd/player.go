package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drgolem/go-portaudio/portaudio"
	"github.com/spf13/cobra"

	"github.com/shaneholloman/concertus/internal/config"
	"github.com/shaneholloman/concertus/pkg/voxio"
)

const version = "1.0.0"

var (
	deviceIdx   int
	showVersion bool
	verbose     bool
)

// playerCmd represents the play command
var playerCmd = &cobra.Command{
	Use:   "play <audio_file>",
	Short: "Play a single audio file (MP3, FLAC, Ogg Vorbis, WAV, Ogg Opus)",
	Long: `Plays one audio file through the voxio engine, resampling to the
device's negotiated output rate and reporting playback status every two
seconds until the track ends or Ctrl-C is pressed.

Examples:
  concertus play music.mp3
  concertus play --device 0 music.flac
  concertus play --verbose audio.opus`,
	Args: cobra.ExactArgs(1),
	Run:  runPlayer,
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.Flags().IntVarP(&deviceIdx, "device", "d", -1, "audio output device index (overrides config)")
	playerCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	playerCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
}

func runPlayer(cmd *cobra.Command, args []string) {
	if showVersion {
		fmt.Printf("concertus v%s\n", version)
		fmt.Println("Built with:")
		fmt.Println("  - Lock-free SPSC ringbuffer")
		fmt.Println("  - Worker/callback producer-consumer architecture")
		fmt.Println("  - Zero-copy real-time audio streaming")
		fmt.Println("  - PortAudio for cross-platform audio")
		os.Exit(0)
	}

	fileName := args[0]

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if deviceIdx >= 0 {
		cfg.DeviceIndex = deviceIdx
	}

	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		slog.Error("file not found", "path", fileName)
		os.Exit(1)
	}

	slog.Info("initializing PortAudio")
	if err := portaudio.Initialize(); err != nil {
		slog.Error("failed to initialize PortAudio", "error", err)
		slog.Error("hint: make sure PortAudio is installed on your system")
		os.Exit(1)
	}
	defer portaudio.Terminate()

	slog.Info("PortAudio initialized", "version", portaudio.GetVersion())
	slog.Info("audio configuration",
		"device_index", cfg.DeviceIndex,
		"output_rate", cfg.OutputRate,
		"output_channels", cfg.OutputChannels)

	vox, err := voxio.New(cfg.DeviceIndex, cfg.OutputRate, cfg.OutputChannels, logger)
	if err != nil {
		slog.Error("failed to open audio engine", "error", err)
		os.Exit(1)
	}
	defer vox.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("starting playback", "path", fileName)
	vox.Play(fileName)

	statusDone := make(chan struct{})
	go monitorPlayback(vox, fileName, statusDone)

	done := make(chan struct{})
	go func() {
		for !vox.TrackEnded() {
			if !vox.IsActive() {
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
		slog.Info("playback completed")
	case sig := <-sigChan:
		slog.Info("signal received, stopping playback", "signal", sig)
		vox.Stop()
	}

	close(statusDone)
	slog.Info("exiting")
}

// monitorPlayback logs playback position every two seconds until done fires.
func monitorPlayback(vox *voxio.Vox, fileName string, done chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			slog.Info("playback status",
				"file", fileName,
				"position_secs", fmt.Sprintf("%.1f", vox.Position()),
				"duration_secs", fmt.Sprintf("%.1f", vox.Duration()),
				"paused", vox.IsPaused())
		case <-done:
			return
		}
	}
}
