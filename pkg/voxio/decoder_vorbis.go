package voxio

import (
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// vorbisDecoder adapts jfreymuth/oggvorbis, which decodes straight to
// interleaved float32 and needs no integer conversion. The library exposes
// no seek API, so seek reopens the file and discards decoded frames up to
// the target, matching the coarse reopen-and-skip strategy used for WAV.
// Vorbis carries no encoder delay/padding metadata in this library.
type vorbisDecoder struct {
	path     string
	file     *os.File
	reader   *oggvorbis.Reader
	rate     int
	channels int
	framePos uint64
}

func openVorbisDecoder(path string) (trackDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errFileOpen(path)
	}
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errDecoder("vorbis: " + err.Error())
	}
	return &vorbisDecoder{
		path:     path,
		file:     f,
		reader:   r,
		rate:     r.SampleRate(),
		channels: r.Channels(),
	}, nil
}

func (d *vorbisDecoder) sampleRate() int { return d.rate }

func (d *vorbisDecoder) channelCount() int { return d.channels }

func (d *vorbisDecoder) totalFrames() (uint64, bool) {
	n := d.reader.Length()
	if n <= 0 {
		return 0, false
	}
	return uint64(n), true
}

func (d *vorbisDecoder) encoderDelayFrames() uint64 { return 0 }

func (d *vorbisDecoder) trailingPaddingFrames() uint64 { return 0 }

func (d *vorbisDecoder) nextPacket() ([]float32, packetStatus, error) {
	buf := make([]float32, 4096*d.channels)
	n, err := d.reader.Read(buf)
	if n == 0 {
		if err == io.EOF {
			return nil, packetEOF, nil
		}
		if err != nil {
			return nil, packetEOF, errDecoder("vorbis: " + err.Error())
		}
		return nil, packetRetry, nil
	}
	d.framePos += uint64(n / d.channels)
	if err == io.EOF {
		return buf[:n], packetEOF, nil
	}
	return buf[:n], packetOK, nil
}

func (d *vorbisDecoder) seek(seconds float64) (float64, error) {
	target := uint64(seconds * float64(d.rate))

	if target < d.framePos {
		if err := d.file.Close(); err != nil {
			return 0, errSeek("vorbis: " + err.Error())
		}
		f, err := os.Open(d.path)
		if err != nil {
			return 0, errFileOpen(d.path)
		}
		r, err := oggvorbis.NewReader(f)
		if err != nil {
			f.Close()
			return 0, errDecoder("vorbis: " + err.Error())
		}
		d.file = f
		d.reader = r
		d.framePos = 0
	}

	discardBuf := make([]float32, 4096*d.channels)
	for d.framePos < target {
		n, err := d.reader.Read(discardBuf)
		if n == 0 {
			break
		}
		d.framePos += uint64(n / d.channels)
		if err == io.EOF {
			break
		}
	}
	return float64(d.framePos) / float64(d.rate), nil
}

func (d *vorbisDecoder) close() error { return d.file.Close() }
