package voxio

import "testing"

func TestRemapChannelsIdentity(t *testing.T) {
	in := []float32{1, 2, 3, 4}
	out := remapChannels(in, 2, 2)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestRemapChannelsMonoUpmix(t *testing.T) {
	in := []float32{1, 2, 3}
	out := remapChannels(in, 1, 2)
	want := []float32{1, 1, 2, 2, 3, 3}
	if len(out) != len(want) {
		t.Fatalf("mono upmix length: got %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRemapChannelsExcessChannelsAreSilent(t *testing.T) {
	in := []float32{1, 2, 3, 4} // 2 frames, stereo
	out := remapChannels(in, 2, 4)
	want := []float32{1, 2, 0, 0, 3, 4, 0, 0}
	if len(out) != len(want) {
		t.Fatalf("upmix length: got %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRemapChannelsDownmixTruncatesExtras(t *testing.T) {
	in := []float32{1, 2, 3, 4, 5, 6} // 2 frames of 3 channels
	out := remapChannels(in, 3, 2)
	want := []float32{1, 2, 4, 5}
	if len(out) != len(want) {
		t.Fatalf("downmix length: got %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], want[i])
		}
	}
}

func TestTrimStateDiscardsEncoderDelay(t *testing.T) {
	tr := newTrimState(2, 0)

	raw := []float32{1, 1, 2, 2, 3, 3, 4, 4} // 8 mono frames at channels=1
	out := tr.apply(raw, 1)
	// first 2 frames (indices 0,1 -> values 1,1) are delay and dropped
	want := []float32{2, 2, 3, 3, 4, 4}
	if len(out) != len(want) {
		t.Fatalf("post-delay length: got %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], want[i])
		}
	}
	if tr.remainingDelay != 0 {
		t.Errorf("remainingDelay: got %d, want 0", tr.remainingDelay)
	}
}

func TestTrimStateHoldsBackTrailingPadding(t *testing.T) {
	tr := newTrimState(0, 2)

	out1 := tr.apply([]float32{1, 2}, 1)
	if out1 != nil {
		t.Errorf("first packet at or under padding window: got %v, want nil", out1)
	}

	out2 := tr.apply([]float32{3, 4}, 1)
	want := []float32{1, 2}
	if len(out2) != len(want) {
		t.Fatalf("emitted after growth: got %v, want %v", out2, want)
	}
	for i := range want {
		if out2[i] != want[i] {
			t.Errorf("out2[%d]: got %v, want %v", i, out2[i], want[i])
		}
	}
	if len(tr.heldBack) != 2 {
		t.Errorf("heldBack length: got %d, want 2", len(tr.heldBack))
	}

	tr.flush()
	if tr.heldBack != nil {
		t.Errorf("heldBack after flush: got %v, want nil", tr.heldBack)
	}
}
