package voxio

import "sync/atomic"

// sampleTap is a bounded, lossy single-producer/single-consumer queue used
// to expose the most recent output samples to a visualizer without ever
// blocking the audio callback. Unlike sampleRing it never rejects a write:
// when full it silently overwrites the oldest sample, because a dropped
// visualization frame is harmless while a stalled callback is not. Adapted
// from the same power-of-two atomic-index design as sampleRing, traded from
// strict-reject to force-overwrite semantics.
type sampleTap struct {
	buf      []float32
	size     uint64
	mask     uint64
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

func newSampleTap(capacity uint64) *sampleTap {
	capacity = nextPowerOf2(capacity)
	return &sampleTap{
		buf:  make([]float32, capacity),
		size: capacity,
		mask: capacity - 1,
	}
}

// push force-writes every sample in samples, advancing readPos past any
// slot it overwrites so writePos - readPos never exceeds the capacity.
func (t *sampleTap) push(samples []float32) {
	for _, s := range samples {
		writePos := t.writePos.Load()
		idx := writePos & t.mask
		t.buf[idx] = s
		t.writePos.Store(writePos + 1)

		// If the write caught up to the reader, the oldest unread sample was
		// just clobbered; advance readPos so it never laps writePos.
		if writePos-t.readPos.Load() >= t.size {
			t.readPos.Store(writePos + 1 - t.size)
		}
	}
}

// latest returns up to n of the most recently pushed samples, oldest first,
// without consuming them; repeated calls may overlap or repeat samples if
// the producer has not pushed new data, which is fine for a visualization
// snapshot.
func (t *sampleTap) latest(n uint64) []float32 {
	writePos := t.writePos.Load()
	readPos := t.readPos.Load()
	avail := writePos - readPos
	if n > avail {
		n = avail
	}
	if n == 0 {
		return nil
	}

	start := writePos - n
	out := make([]float32, n)
	for i := uint64(0); i < n; i++ {
		out[i] = t.buf[(start+i)&t.mask]
	}
	return out
}
