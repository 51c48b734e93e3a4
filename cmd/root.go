package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "concertus",
	Short: "A terminal music player with gapless playback",
	Long: `concertus - an audio engine and terminal player built around a lock-free
SPSC ringbuffer for real-time streaming.

Features:
  - Lock-free SPSC ringbuffer feeding a real-time PortAudio callback
  - Decodes MP3, FLAC, Ogg Vorbis, WAV, and Ogg Opus
  - Resamples every track to the device's negotiated output rate
  - Gapless transitions between queued tracks
  - Sample-accurate seeking where the container supports it
  - A sqlite-backed track catalog built by scanning library folders

Commands:
  - play: play a single audio file
  - scan: scan one or more folders into the track catalog`,
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a concertus config file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
