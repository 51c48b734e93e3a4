package voxio

import (
	"bytes"
	"encoding/binary"
	"math"

	soxr "github.com/zaf/resample"
)

// resampler performs synchronous sample-rate conversion on interleaved
// float32 frames in [-1, 1], wrapping the same SoXR binding the teacher uses
// for its own sample-rate conversion (cmd/transform.go). SoXR streams raw
// bytes, so frames are converted to 16-bit PCM on the way in and back to
// float32 on the way out; the resampler keeps its internal filter state
// across calls until flush tears it down.
type resampler struct {
	channels int
	enc      *soxr.Resampler
	out      bytes.Buffer
}

// newResampler returns nil when inputRate == outputRate: no resampling is
// needed and the worker should pass samples straight to the ring.
func newResampler(inputRate, outputRate, channels int) (*resampler, error) {
	if inputRate == outputRate {
		return nil, nil
	}
	r := &resampler{channels: channels}
	enc, err := soxr.New(&r.out, float64(inputRate), float64(outputRate), channels, soxr.I16, soxr.HighQ)
	if err != nil {
		return nil, errResampler(err.Error())
	}
	r.enc = enc
	return r, nil
}

// process feeds one packet's worth of input frames through the resampler and
// returns whatever output frames are ready.
func (r *resampler) process(input []float32) ([]float32, error) {
	if _, err := r.enc.Write(floatsToPCM16(input)); err != nil {
		return nil, errResampler(err.Error())
	}
	return r.drain(), nil
}

// flush finalizes the underlying SoXR resampler, releasing whatever samples
// are still held in its filter memory. The resampler is single-use after
// flush; the worker builds a fresh one rather than reusing this instance.
func (r *resampler) flush() ([]float32, error) {
	if err := r.enc.Close(); err != nil {
		return nil, errResampler(err.Error())
	}
	return r.drain(), nil
}

func (r *resampler) drain() []float32 {
	out := pcm16ToFloats(r.out.Bytes())
	r.out.Reset()
	return out
}

// floatsToPCM16 converts interleaved float32 samples in [-1, 1] to
// little-endian 16-bit PCM, clamping out-of-range input rather than
// wrapping it.
func floatsToPCM16(in []float32) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(math.Round(float64(s) * 32767))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func pcm16ToFloats(in []byte) []float32 {
	n := len(in) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(in[i*2:]))
		out[i] = float32(v) / 32768
	}
	return out
}
