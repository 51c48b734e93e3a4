package voxio

import "testing"

func TestSharedStatePauseIgnoredWhileInactive(t *testing.T) {
	s := &sharedState{}
	s.setPaused(true)
	if s.isPaused() {
		t.Errorf("pause while inactive: got paused=true, want false")
	}
}

func TestSharedStateTogglePlaybackRequiresActive(t *testing.T) {
	s := &sharedState{}
	s.togglePlayback()
	if s.isPaused() {
		t.Errorf("toggle while inactive: got paused=true, want false")
	}

	s.setActive(true)
	s.togglePlayback()
	if !s.isPaused() {
		t.Errorf("toggle while active: got paused=false, want true")
	}
	s.togglePlayback()
	if s.isPaused() {
		t.Errorf("second toggle while active: got paused=true, want false")
	}
}

func TestSharedStateTrackEndedIsOneShot(t *testing.T) {
	s := &sharedState{}
	s.signalTrackEnded()

	if !s.takeTrackEnded() {
		t.Errorf("first takeTrackEnded: got false, want true")
	}
	if s.takeTrackEnded() {
		t.Errorf("second takeTrackEnded: got true, want false")
	}
}

func TestSharedStateSeekBumpsGenerationAndFinishes(t *testing.T) {
	s := &sharedState{}
	if s.isSeeking() {
		t.Fatalf("fresh state: isSeeking got true, want false")
	}

	s.startSeek()
	if !s.isSeeking() {
		t.Errorf("after startSeek: isSeeking got false, want true")
	}
	gen := s.seekGen()
	if gen != 1 {
		t.Errorf("seekGen after one startSeek: got %d, want 1", gen)
	}

	s.startSeek()
	if s.seekGen() != 2 {
		t.Errorf("seekGen after two startSeek: got %d, want 2", s.seekGen())
	}

	s.finishSeek()
	if s.isSeeking() {
		t.Errorf("after finishSeek: isSeeking got true, want false")
	}
}

func TestSharedStatePositionAndDuration(t *testing.T) {
	s := &sharedState{}
	s.setDurationSecs(180.5)
	if got := s.durationSecs(); got != 180.5 {
		t.Errorf("durationSecs: got %v, want 180.5", got)
	}

	s.addSamples(44100)
	if got := s.positionSecs(44100); got != 1.0 {
		t.Errorf("positionSecs: got %v, want 1.0", got)
	}

	s.resetSamples()
	if got := s.positionSecs(44100); got != 0 {
		t.Errorf("positionSecs after reset: got %v, want 0", got)
	}
}
