package voxio

import "testing"

func TestSampleTapLatestReturnsMostRecent(t *testing.T) {
	tap := newSampleTap(8)

	tap.push([]float32{1, 2, 3, 4})

	got := tap.latest(2)
	want := []float32{3, 4}
	if len(got) != len(want) {
		t.Fatalf("latest: got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampleTapOverwritesOldestWhenFull(t *testing.T) {
	tap := newSampleTap(4)

	tap.push([]float32{1, 2, 3, 4, 5, 6})

	got := tap.latest(4)
	want := []float32{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("latest: got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampleTapLatestCapsAtAvailable(t *testing.T) {
	tap := newSampleTap(16)
	tap.push([]float32{1, 2})

	got := tap.latest(10)
	if len(got) != 2 {
		t.Fatalf("latest: got %d samples, want 2", len(got))
	}
}

func TestSampleTapLatestZeroWhenEmpty(t *testing.T) {
	tap := newSampleTap(16)
	if got := tap.latest(4); got != nil {
		t.Errorf("latest on empty tap: got %v, want nil", got)
	}
}

func TestSampleTapNeverBlocksOnOverflow(t *testing.T) {
	tap := newSampleTap(4)
	big := make([]float32, 100)
	for i := range big {
		big[i] = float32(i)
	}
	tap.push(big)

	got := tap.latest(4)
	want := []float32{96, 97, 98, 99}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}
