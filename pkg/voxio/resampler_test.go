package voxio

import "testing"

func TestNewResamplerNilWhenRatesMatch(t *testing.T) {
	r, err := newResampler(44100, 44100, 2)
	if err != nil {
		t.Fatalf("newResampler with equal rates: unexpected error %v", err)
	}
	if r != nil {
		t.Errorf("newResampler with equal rates: got non-nil, want nil")
	}
}

func TestResamplerUpsampleDoublesFrameCount(t *testing.T) {
	r, err := newResampler(22050, 44100, 1)
	if err != nil {
		t.Fatalf("newResampler: unexpected error %v", err)
	}

	input := make([]float32, 100)

	var total int
	out, err := r.process(input)
	if err != nil {
		t.Fatalf("process: unexpected error %v", err)
	}
	total += len(out)

	tail, err := r.flush()
	if err != nil {
		t.Fatalf("flush: unexpected error %v", err)
	}
	total += len(tail)

	wantApprox := 200
	if total < wantApprox/2 || total > wantApprox*2 {
		t.Errorf("upsample 2x: got %d output frames, want roughly %d", total, wantApprox)
	}
}

func TestResamplerDownsampleHalvesFrameCount(t *testing.T) {
	r, err := newResampler(44100, 22050, 1)
	if err != nil {
		t.Fatalf("newResampler: unexpected error %v", err)
	}

	input := make([]float32, 200)

	var total int
	out, err := r.process(input)
	if err != nil {
		t.Fatalf("process: unexpected error %v", err)
	}
	total += len(out)

	tail, err := r.flush()
	if err != nil {
		t.Fatalf("flush: unexpected error %v", err)
	}
	total += len(tail)

	wantApprox := 100
	if total < wantApprox/2 || total > wantApprox*2 {
		t.Errorf("downsample 0.5x: got %d output frames, want roughly %d", total, wantApprox)
	}
}

func TestResamplerStereoInterleaving(t *testing.T) {
	r, err := newResampler(22050, 44100, 2)
	if err != nil {
		t.Fatalf("newResampler: unexpected error %v", err)
	}

	input := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	out, err := r.process(input)
	if err != nil {
		t.Fatalf("process: unexpected error %v", err)
	}
	tail, err := r.flush()
	if err != nil {
		t.Fatalf("flush: unexpected error %v", err)
	}
	out = append(out, tail...)

	if len(out)%2 != 0 {
		t.Fatalf("stereo output length not even: %d", len(out))
	}
}

func TestFloatsToPCM16RoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1}
	bs := floatsToPCM16(in)
	out := pcm16ToFloats(bs)
	if len(out) != len(in) {
		t.Fatalf("round trip length: got %d, want %d", len(out), len(in))
	}
	for i := range in {
		diff := float64(out[i]) - float64(in[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > 0.001 {
			t.Errorf("out[%d]: got %v, want approx %v", i, out[i], in[i])
		}
	}
}

func TestFloatsToPCM16ClampsOutOfRange(t *testing.T) {
	bs := floatsToPCM16([]float32{2, -2})
	out := pcm16ToFloats(bs)
	if out[0] < 0.99 {
		t.Errorf("clamp high: got %v, want ~1", out[0])
	}
	if out[1] > -0.99 {
		t.Errorf("clamp low: got %v, want ~-1", out[1])
	}
}
