package voxio

import (
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
)

// flacDecoder adapts gopxl/beep/v2's FLAC decoder, which gives sample-exact
// Len/Position/Seek unlike the teacher's flac wrapper. beep normalizes every
// stream to two-channel [2]float64 frames regardless of the source channel
// count, so channelCount always reports 2 here; true mono/multichannel FLAC
// is downmixed by beep before it reaches this adapter. FLAC carries no
// encoder delay/padding, so both are zero.
type flacDecoder struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	buf      [][2]float64
}

func openFLACDecoder(path string) (trackDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errFileOpen(path)
	}
	streamer, format, err := flac.Decode(f)
	if err != nil {
		f.Close()
		return nil, errDecoder("flac: " + err.Error())
	}
	return &flacDecoder{
		file:     f,
		streamer: streamer,
		format:   format,
		buf:      make([][2]float64, 4096),
	}, nil
}

func (d *flacDecoder) sampleRate() int { return int(d.format.SampleRate) }

func (d *flacDecoder) channelCount() int { return 2 }

func (d *flacDecoder) totalFrames() (uint64, bool) {
	n := d.streamer.Len()
	if n <= 0 {
		return 0, false
	}
	return uint64(n), true
}

func (d *flacDecoder) encoderDelayFrames() uint64 { return 0 }

func (d *flacDecoder) trailingPaddingFrames() uint64 { return 0 }

func (d *flacDecoder) nextPacket() ([]float32, packetStatus, error) {
	n, ok := d.streamer.Stream(d.buf)
	if n == 0 {
		if !ok {
			if err := d.streamer.Err(); err != nil {
				return nil, packetEOF, errDecoder("flac: " + err.Error())
			}
			return nil, packetEOF, nil
		}
		return nil, packetRetry, nil
	}
	out := make([]float32, n*2)
	for i := 0; i < n; i++ {
		out[i*2] = float32(d.buf[i][0])
		out[i*2+1] = float32(d.buf[i][1])
	}
	if !ok {
		return out, packetEOF, nil
	}
	return out, packetOK, nil
}

func (d *flacDecoder) seek(seconds float64) (float64, error) {
	pos := int(seconds * float64(d.format.SampleRate))
	if err := d.streamer.Seek(pos); err != nil {
		return 0, errSeek("flac: " + err.Error())
	}
	return float64(d.streamer.Position()) / float64(d.format.SampleRate), nil
}

func (d *flacDecoder) close() error {
	cerr := d.streamer.Close()
	ferr := d.file.Close()
	if cerr != nil {
		return cerr
	}
	return ferr
}
