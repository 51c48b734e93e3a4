package voxio

import (
	"io"
	"os"

	"github.com/jj11hh/opus"
)

const opusMaxFrameSamples = 5760 // largest decodable frame at 48kHz per channel

// opusDecoder adapts jj11hh/opus over a hand-rolled Ogg demuxer (oggOpusReader),
// since the Ogg/Opus container needs page and packet framing that no pack
// decoder library supplies on its own. Opus always decodes at 48kHz; the
// OpusHead pre-skip field becomes encoderDelayFrames so the worker trims
// priming samples the same way it does for any other codec. Granule-based
// seeking bisects to a page at or before an 80ms pre-roll point, then decodes
// and discards whole packets until the tracked granule reaches the target,
// so it lands on the first packet boundary at or past it.
type opusDecoder struct {
	path    string
	file    *os.File
	ogg     *oggOpusReader
	dec     *opus.Decoder
	channels int

	page      *oggPage
	packetIdx int
	granule   int64
}

func openOpusDecoder(path string) (trackDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errFileOpen(path)
	}
	ogg, err := newOggOpusReader(f)
	if err != nil {
		f.Close()
		return nil, errDecoder("opus: " + err.Error())
	}
	channels := ogg.channels()
	if channels == 0 {
		channels = 2 // Opus-in-Matroska fallback; Ogg always carries a channel count, kept for parity
	}
	dec, err := opus.NewDecoder(48000, channels)
	if err != nil {
		f.Close()
		return nil, errDecoder("opus: " + err.Error())
	}
	return &opusDecoder{
		path:     path,
		file:     f,
		ogg:      ogg,
		dec:      dec,
		channels: channels,
	}, nil
}

func (d *opusDecoder) sampleRate() int { return 48000 }

func (d *opusDecoder) channelCount() int { return d.channels }

func (d *opusDecoder) totalFrames() (uint64, bool) {
	// The last granule position counts every decoded sample, pre-skip included.
	total := d.ogg.lastGranule
	if total <= 0 {
		return 0, false
	}
	return uint64(total), true
}

func (d *opusDecoder) encoderDelayFrames() uint64 { return uint64(d.ogg.preSkip()) }

func (d *opusDecoder) trailingPaddingFrames() uint64 { return 0 }

func (d *opusDecoder) nextPacket() ([]float32, packetStatus, error) {
	if d.page == nil || d.packetIdx >= len(d.page.Packets) {
		page, err := d.ogg.readPage()
		if err != nil {
			if err == io.EOF {
				return nil, packetEOF, nil
			}
			return nil, packetEOF, errDecoder("opus: " + err.Error())
		}
		d.page = page
		d.packetIdx = 0
		if len(page.Packets) == 0 {
			return nil, packetRetry, nil
		}
	}

	packet := d.page.Packets[d.packetIdx]
	d.packetIdx++

	buf := make([]float32, opusMaxFrameSamples*d.channels)
	samplesPerChannel, err := d.dec.DecodeFloat32(packet, buf)
	if err != nil {
		return nil, packetRetry, nil
	}
	d.granule += int64(samplesPerChannel)
	return buf[:samplesPerChannel*d.channels], packetOK, nil
}

func (d *opusDecoder) seek(seconds float64) (float64, error) {
	target := int64(seconds * 48000)
	preroll := target - 3840 // 80ms pre-roll so the decoder state is warm at target
	if preroll < 0 {
		preroll = 0
	}
	if err := d.ogg.seekToGranule(preroll); err != nil {
		return 0, errSeek("opus: " + err.Error())
	}
	d.page = nil
	d.packetIdx = 0
	d.granule = preroll

	for d.granule < target {
		samples, status, err := d.nextPacket()
		if err != nil {
			return 0, errSeek("opus: " + err.Error())
		}
		if status == packetEOF {
			break
		}
		_ = samples
	}
	return float64(d.granule) / 48000, nil
}

func (d *opusDecoder) close() error { return d.file.Close() }
