package voxio

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/drgolem/go-portaudio/portaudio"
)

// Vox is the control handle for the playback engine: every exported method
// just sends a command to the decoder worker or reads a value out of the
// lock-free shared state. It owns the open PortAudio stream and the audio
// callback that drains the ring buffer on the device's own real-time
// thread.
type Vox struct {
	stream *portaudio.PaStream
	cmds   chan command
	state  *sharedState
	ring   *sampleRing
	tap    *sampleTap
	log    *slog.Logger

	outputRate     int
	outputChannels int

	mu        sync.Mutex
	closed    bool
	fading    bool
	fadeLeft  int
	fadeTotal int
	wasSeek   bool

	worker *worker
}

// New opens the audio device at deviceIndex and spins up the decoder worker.
// No track is loaded until Play is called.
func New(deviceIndex, outputRate, outputChannels int, log *slog.Logger) (*Vox, error) {
	if log == nil {
		log = slog.Default()
	}

	ringCapacity := uint64(RingBufferMS) * uint64(outputRate) * uint64(outputChannels) / 1000
	tapCapacity := uint64(SampleTapCapacity)

	v := &Vox{
		cmds:           make(chan command, CommandChannelCapacity),
		state:          &sharedState{},
		ring:           newSampleRing(ringCapacity),
		tap:            newSampleTap(tapCapacity),
		log:            log,
		outputRate:     outputRate,
		outputChannels: outputChannels,
		fadeTotal:      int(uint64(SeekFadeMS) * uint64(outputRate) / 1000),
	}

	v.worker = newWorker(v.cmds, v.ring, v.state, outputRate, outputChannels, log)
	go v.worker.run()

	stream := &portaudio.PaStream{
		OutputParameters: &portaudio.PaStreamParameters{
			DeviceIndex:  deviceIndex,
			ChannelCount: outputChannels,
			SampleFormat: portaudio.SampleFmtFloat32,
		},
		SampleRate: float64(outputRate),
	}
	if err := stream.OpenCallback(1024, v.audioCallback); err != nil {
		return nil, errOutput(err.Error())
	}
	if err := stream.StartStream(); err != nil {
		return nil, errOutput(err.Error())
	}
	v.stream = stream

	return v, nil
}

// Play replaces the current track with path and begins decoding immediately.
func (v *Vox) Play(path string) {
	v.state.setActive(true)
	v.cmds <- cmdPlay{path: path}
}

// SetNext queues path to start the instant the current track ends, without
// a gap, reusing the resampler when the formats match.
func (v *Vox) SetNext(path string) { v.cmds <- cmdQueueNext{path: path} }

// SeekTo jumps to an absolute position in seconds.
func (v *Vox) SeekTo(seconds float64) { v.cmds <- cmdSeek{absolute: true, seconds: seconds} }

// SeekRelative jumps by a delta in seconds from the current position.
func (v *Vox) SeekRelative(delta float64) { v.cmds <- cmdSeek{absolute: false, seconds: delta} }

// TogglePlayback flips between paused and playing.
func (v *Vox) TogglePlayback() { v.cmds <- cmdTogglePlayback{} }

// Pause pauses playback; a pause requested while inactive is ignored.
func (v *Vox) Pause() { v.cmds <- cmdPause{} }

// Resume resumes playback.
func (v *Vox) Resume() { v.cmds <- cmdResume{} }

// Stop halts playback and releases the current track.
func (v *Vox) Stop() { v.cmds <- cmdStop{} }

// Close shuts the worker down and closes the audio stream. It waits for the
// audio stream to stop; it returns without waiting for the worker goroutine
// to exit.
func (v *Vox) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	v.cmds <- cmdShutdown{}
	close(v.cmds)

	if err := v.stream.StopStream(); err != nil {
		v.log.Warn("failed to stop stream", "error", err)
	}
	return v.stream.CloseCallback()
}

// IsActive reports whether a track is currently loaded.
func (v *Vox) IsActive() bool { return v.state.isActive() }

// IsPaused reports whether playback is paused.
func (v *Vox) IsPaused() bool { return v.state.isPaused() }

// Position returns the current playback position in seconds.
func (v *Vox) Position() float64 { return v.state.positionSecs(v.outputRate) }

// Duration returns the current track's duration in seconds, or zero when
// unknown (formats whose adapter reports no frame count, such as WAV).
func (v *Vox) Duration() float64 { return v.state.durationSecs() }

// TrackEnded reports, exactly once per end event, whether the current track
// finished since the last call.
func (v *Vox) TrackEnded() bool { return v.state.takeTrackEnded() }

// SampleRate returns the negotiated output device sample rate.
func (v *Vox) SampleRate() int { return v.outputRate }

// GetLatestSamples returns up to n of the most recently played output
// samples, for visualization.
func (v *Vox) GetLatestSamples(n int) []float32 { return v.tap.latest(uint64(n)) }

// audioCallback runs on PortAudio's real-time thread. It never allocates
// beyond what the Go runtime itself may do, never blocks, and is the sole
// place samplesPlayed advances during ordinary (non-seeking) playback.
func (v *Vox) audioCallback(input, output []byte, frameCount uint, timeInfo *portaudio.StreamCallbackTimeInfo, statusFlags portaudio.StreamCallbackFlags) portaudio.StreamCallbackResult {
	frames := int(frameCount)
	samplesNeeded := frames * v.outputChannels
	out := asFloat32Slice(output)[:samplesNeeded]

	isSeeking := v.state.isSeeking()
	silence := v.state.isPaused() || !v.state.isActive() || isSeeking

	if silence {
		v.ring.drain()
		for i := range out {
			out[i] = 0
		}
	} else {
		if v.wasSeek {
			v.fading = true
			v.fadeLeft = v.fadeTotal
		}

		toRead := v.ring.pop(out)
		if toRead < len(out) {
			for i := toRead; i < len(out); i++ {
				out[i] = 0
			}
		}

		if v.fading {
			frameCount := toRead / v.outputChannels
			for f := 0; f < frameCount && v.fadeLeft > 0; f++ {
				gain := 1.0 - float32(v.fadeLeft)/float32(v.fadeTotal)
				for c := 0; c < v.outputChannels; c++ {
					out[f*v.outputChannels+c] *= gain
				}
				v.fadeLeft--
			}
			if v.fadeLeft <= 0 {
				v.fading = false
			}
		}

		if toRead > 0 {
			v.state.addSamples(uint64(toRead / v.outputChannels))
		}
	}
	v.wasSeek = isSeeking

	v.tap.push(out)

	return portaudio.Continue
}

// asFloat32Slice reinterprets a byte buffer as float32 samples in place, with
// no copy and no allocation, since the callback runs on PortAudio's
// real-time thread and must write directly into its output buffer.
func asFloat32Slice(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}
