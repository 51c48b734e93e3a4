// Package voxio is the playback engine at the core of concertus: it decodes
// compressed audio files, resamples to the host device's native rate, and
// streams interleaved samples to an OS audio callback with gapless track
// transitions, accurate seeking, and a live sample tap for visualization.
//
// Three threads cooperate without locks. The caller's goroutine (the Handle)
// sends commands over a bounded channel to the decoder Worker, which owns
// the codec and resampler and produces into a lock-free SPSC Ring. The audio
// callback, invoked by the OS on its own real-time thread, is the ring's sole
// consumer and the sole writer of the running sample counter during normal
// playback. All cross-thread coordination besides the ring goes through the
// atomics in SharedState.
package voxio

import "time"

// Tunables, mirrored from the engine design. Buffer sizes are derived from
// these at device-open time using the negotiated sample rate and channel
// count.
const (
	// RingBufferMS is the ring buffer depth in milliseconds of output audio.
	RingBufferMS = 150
	// CommandChannelCapacity bounds the command channel between Handle and Worker.
	CommandChannelCapacity = 16
	// ResamplerBlockFrames is the reference engine's fixed input block size per
	// resampler step; the SoXR binding manages its own internal blocking and
	// buffering, so this is kept only for parity with the tunable surface.
	ResamplerBlockFrames = 1024
	// ResamplerSubBlocks further divides a resampler step for latency, mirrored
	// from the reference design; unused by the SoXR-backed resampler and kept
	// only for parity with the tunable surface.
	ResamplerSubBlocks = 2
	// SampleTapCapacity is the number of float32 samples retained for the tap.
	SampleTapCapacity = 2048
	// SeekPrefillMS is how much output audio the worker prefills after a seek lands.
	SeekPrefillMS = 10
	// SeekFadeMS is the linear fade-in duration applied when playback resumes after a seek.
	SeekFadeMS = 30
	// MaxProbePackets is the reference design's packet budget for recovering a
	// missing sample rate / channel count. Every adapter here reads both from
	// its container header and none probes packets, so it is unreferenced.
	MaxProbePackets = 10
	// ringFullSpinSleep is the worker's back-pressure poll interval while the ring is full.
	ringFullSpinSleep = 100 * time.Microsecond
)
