package voxio

import (
	"sync"
	"testing"
)

func TestNewSampleRingRoundsToPowerOf2(t *testing.T) {
	tests := []struct {
		input    uint64
		expected uint64
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{100, 128},
		{1000, 1024},
	}

	for _, tt := range tests {
		r := newSampleRing(tt.input)
		if r.size != tt.expected {
			t.Errorf("newSampleRing(%d): got size %d, want %d", tt.input, r.size, tt.expected)
		}
	}
}

func TestSampleRingPushPop(t *testing.T) {
	r := newSampleRing(16)

	in := []float32{1, 2, 3, 4, 5}
	n := r.push(in)
	if n != 5 {
		t.Fatalf("push: got %d, want 5", n)
	}
	if r.availableRead() != 5 {
		t.Errorf("availableRead: got %d, want 5", r.availableRead())
	}

	out := make([]float32, 3)
	n = r.pop(out)
	if n != 3 {
		t.Fatalf("pop: got %d, want 3", n)
	}
	for i, v := range []float32{1, 2, 3} {
		if out[i] != v {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], v)
		}
	}
	if r.availableRead() != 2 {
		t.Errorf("availableRead after pop: got %d, want 2", r.availableRead())
	}
}

func TestSampleRingPartialWriteWhenFull(t *testing.T) {
	r := newSampleRing(4)

	n := r.push([]float32{1, 2, 3, 4, 5})
	if n != 4 {
		t.Errorf("push into full-capacity ring: got %d, want 4", n)
	}
	if r.availableWrite() != 0 {
		t.Errorf("availableWrite: got %d, want 0", r.availableWrite())
	}
}

func TestSampleRingWrapAround(t *testing.T) {
	r := newSampleRing(4)

	r.push([]float32{1, 2, 3})
	out := make([]float32, 2)
	r.pop(out)

	r.push([]float32{4, 5, 6})

	out = make([]float32, 4)
	n := r.pop(out)
	if n != 4 {
		t.Fatalf("pop after wrap: got %d, want 4", n)
	}
	want := []float32{3, 4, 5, 6}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d]: got %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSampleRingDrain(t *testing.T) {
	r := newSampleRing(16)
	r.push([]float32{1, 2, 3, 4})

	r.drain()

	if r.availableRead() != 0 {
		t.Errorf("availableRead after drain: got %d, want 0", r.availableRead())
	}
	if r.availableWrite() != r.size {
		t.Errorf("availableWrite after drain: got %d, want %d", r.availableWrite(), r.size)
	}
}

func TestSampleRingConcurrentProducerConsumer(t *testing.T) {
	r := newSampleRing(256)
	const total = 100000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		i := 0
		for i < total {
			batch := make([]float32, 64)
			for j := range batch {
				batch[j] = float32(i + j)
			}
			written := 0
			for written < len(batch) {
				n := r.push(batch[written:])
				written += n
			}
			i += len(batch)
		}
	}()

	received := 0
	go func() {
		defer wg.Done()
		buf := make([]float32, 64)
		for received < total {
			n := r.pop(buf)
			for i := 0; i < n; i++ {
				if buf[i] != float32(received+i) {
					t.Errorf("sample %d: got %v, want %v", received+i, buf[i], float32(received+i))
				}
			}
			received += n
		}
	}()

	wg.Wait()
	if received != total {
		t.Errorf("received %d samples, want %d", received, total)
	}
}
