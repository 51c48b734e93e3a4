package voxio

import (
	"io"
	"os"

	"github.com/imcarsen/go-mp3"
)

// mp3Decoder adapts github.com/imcarsen/go-mp3, which decodes straight to
// interleaved 16-bit PCM stereo and exposes a byte-offset io.Seeker. MP3
// carries no standardized encoder delay/padding metadata in this library, so
// both are reported as zero; gapless MP3 trimming is a known limitation
// shared with the reference decoder.
type mp3Decoder struct {
	file    *os.File
	dec     *mp3.Decoder
	rate    int
	readBuf []byte
}

func openMP3Decoder(path string) (trackDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errFileOpen(path)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, errDecoder("mp3: " + err.Error())
	}
	return &mp3Decoder{
		file:    f,
		dec:     dec,
		rate:    dec.SampleRate(),
		readBuf: make([]byte, 4*4096), // 4096 stereo 16-bit frames
	}, nil
}

func (d *mp3Decoder) sampleRate() int { return d.rate }

func (d *mp3Decoder) channelCount() int { return 2 }

func (d *mp3Decoder) totalFrames() (uint64, bool) {
	length := d.dec.Length()
	if length <= 0 {
		return 0, false
	}
	return uint64(length) / 4, true
}

func (d *mp3Decoder) encoderDelayFrames() uint64 { return 0 }

func (d *mp3Decoder) trailingPaddingFrames() uint64 { return 0 }

func (d *mp3Decoder) nextPacket() ([]float32, packetStatus, error) {
	n, err := d.dec.Read(d.readBuf)
	if n == 0 {
		if err == io.EOF {
			return nil, packetEOF, nil
		}
		if err != nil {
			return nil, packetEOF, errDecoder("mp3: " + err.Error())
		}
		return nil, packetRetry, nil
	}
	frames := n / 4
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		l := int16(uint16(d.readBuf[i*4]) | uint16(d.readBuf[i*4+1])<<8)
		r := int16(uint16(d.readBuf[i*4+2]) | uint16(d.readBuf[i*4+3])<<8)
		out[i*2] = float32(l) / 32768.0
		out[i*2+1] = float32(r) / 32768.0
	}
	return out, packetOK, nil
}

func (d *mp3Decoder) seek(seconds float64) (float64, error) {
	sampleOffset := int64(seconds * float64(d.rate))
	byteOffset := sampleOffset * 4
	actual, err := d.dec.Seek(byteOffset, io.SeekStart)
	if err != nil {
		return 0, errSeek("mp3: " + err.Error())
	}
	return float64(actual/4) / float64(d.rate), nil
}

func (d *mp3Decoder) close() error { return d.file.Close() }
