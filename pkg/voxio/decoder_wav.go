package voxio

import (
	"io"
	"os"

	"github.com/youpy/go-wav"
)

// wavDecoder adapts github.com/youpy/go-wav, the teacher's WAV codec,
// generalized from its fixed-stereo byte-buffer shape to interleaved
// float32 and given coarse reopen-and-skip seeking, which the library does
// not provide natively. WAV is uncompressed PCM, so there is no encoder
// delay or padding to trim.
type wavDecoder struct {
	path     string
	file     *os.File
	reader   *wav.Reader
	rate     int
	channels int
	bps      int
	framePos uint64
}

func openWAVDecoder(path string) (trackDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errFileOpen(path)
	}
	r := wav.NewReader(f)
	format, err := r.Format()
	if err != nil {
		f.Close()
		return nil, errDecoder("wav: " + err.Error())
	}
	if format.AudioFormat != wav.AudioFormatPCM {
		f.Close()
		return nil, errDecoder("wav: unsupported format (only PCM is supported)")
	}
	return &wavDecoder{
		path:     path,
		file:     f,
		reader:   r,
		rate:     int(format.SampleRate),
		channels: int(format.NumChannels),
		bps:      int(format.BitsPerSample),
	}, nil
}

func (d *wavDecoder) sampleRate() int { return d.rate }

func (d *wavDecoder) channelCount() int { return d.channels }

func (d *wavDecoder) totalFrames() (uint64, bool) { return 0, false }

func (d *wavDecoder) encoderDelayFrames() uint64 { return 0 }

func (d *wavDecoder) trailingPaddingFrames() uint64 { return 0 }

func (d *wavDecoder) nextPacket() ([]float32, packetStatus, error) {
	samples, err := d.reader.ReadSamples(1024)
	if len(samples) == 0 {
		if err == io.EOF {
			return nil, packetEOF, nil
		}
		if err != nil {
			return nil, packetEOF, errDecoder("wav: " + err.Error())
		}
		return nil, packetRetry, nil
	}
	out := make([]float32, len(samples)*d.channels)
	maxVal := float32(int64(1) << (uint(d.bps) - 1))
	for i, s := range samples {
		for ch := 0; ch < d.channels; ch++ {
			v := 0
			if ch < len(s.Values) {
				v = s.Values[ch]
			}
			out[i*d.channels+ch] = float32(v) / maxVal
		}
	}
	d.framePos += uint64(len(samples))
	if err == io.EOF {
		return out, packetEOF, nil
	}
	return out, packetOK, nil
}

func (d *wavDecoder) seek(seconds float64) (float64, error) {
	target := uint64(seconds * float64(d.rate))

	if target < d.framePos {
		if err := d.file.Close(); err != nil {
			return 0, errSeek("wav: " + err.Error())
		}
		f, err := os.Open(d.path)
		if err != nil {
			return 0, errFileOpen(d.path)
		}
		r := wav.NewReader(f)
		if _, err := r.Format(); err != nil {
			f.Close()
			return 0, errDecoder("wav: " + err.Error())
		}
		d.file = f
		d.reader = r
		d.framePos = 0
	}

	for d.framePos < target {
		chunk := target - d.framePos
		if chunk > 4096 {
			chunk = 4096
		}
		samples, err := d.reader.ReadSamples(uint32(chunk))
		if len(samples) == 0 {
			break
		}
		d.framePos += uint64(len(samples))
		if err == io.EOF {
			break
		}
	}
	return float64(d.framePos) / float64(d.rate), nil
}

func (d *wavDecoder) close() error { return d.file.Close() }
