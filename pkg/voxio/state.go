package voxio

import "sync/atomic"

// sharedState is the lock-free coordination point between the worker thread
// and the audio callback. Every field is an atomic; there is no mutex in this
// type. See the package doc for the ownership rules that make this safe.
type sharedState struct {
	active          atomic.Bool
	paused          atomic.Bool
	samplesPlayed   atomic.Uint64
	trackEnded      atomic.Bool
	seekPending     atomic.Bool
	seekGeneration  atomic.Uint64
	durationMicros  atomic.Uint64
}

func (s *sharedState) isActive() bool { return s.active.Load() }

func (s *sharedState) isPaused() bool { return s.paused.Load() }

func (s *sharedState) getSamples() uint64 { return s.samplesPlayed.Load() }

func (s *sharedState) isSeeking() bool { return s.seekPending.Load() }

func (s *sharedState) seekGen() uint64 { return s.seekGeneration.Load() }

func (s *sharedState) durationSecs() float64 {
	return float64(s.durationMicros.Load()) / 1e6
}

// positionSecs converts the running output-frame counter into seconds at
// the device's negotiated output rate.
func (s *sharedState) positionSecs(outputRate int) float64 {
	return float64(s.samplesPlayed.Load()) / float64(outputRate)
}

func (s *sharedState) setActive(v bool) { s.active.Store(v) }

// setPaused flips the paused flag. A pause request while inactive is ignored,
// matching the "Pauses requested while inactive are ignored" failure policy.
func (s *sharedState) setPaused(v bool) {
	if v && !s.isActive() {
		return
	}
	s.paused.Store(v)
}

func (s *sharedState) togglePlayback() {
	if s.isActive() {
		for {
			old := s.paused.Load()
			if s.paused.CompareAndSwap(old, !old) {
				return
			}
		}
	} else {
		s.paused.Store(false)
	}
}

func (s *sharedState) setSamples(v uint64) { s.samplesPlayed.Store(v) }

func (s *sharedState) addSamples(v uint64) { s.samplesPlayed.Add(v) }

func (s *sharedState) resetSamples() { s.samplesPlayed.Store(0) }

func (s *sharedState) setDurationSecs(secs float64) {
	s.durationMicros.Store(uint64(secs * 1e6))
}

func (s *sharedState) signalTrackEnded() { s.trackEnded.Store(true) }

// takeTrackEnded swaps the one-shot latch to false and returns its prior
// value, guaranteeing exactly-once delivery per end event.
func (s *sharedState) takeTrackEnded() bool { return s.trackEnded.Swap(false) }

// startSeek publishes seek-in-progress. Pending is set before the generation
// bump so that a callback observing the new generation also observes pending;
// this ordering is what lets the callback gate to silence before the worker
// starts mutating decoder state.
func (s *sharedState) startSeek() {
	s.seekPending.Store(true)
	s.seekGeneration.Add(1)
}

func (s *sharedState) finishSeek() { s.seekPending.Store(false) }
